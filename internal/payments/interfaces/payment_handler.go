package interfaces

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/sebuszqo/PaymentsManager/internal/payments/domain"
	paymentErrors "github.com/sebuszqo/PaymentsManager/internal/payments/errors"
)

const contentErrMsg = "Content type of the request is not json. Doesn't support other formats now."

type PaymentServiceInterface interface {
	AddPayment(input *domain.PaymentInput) (*domain.PaymentView, error)
	GetPayments(ids []int, attributes map[string]string) ([]domain.PaymentView, error)
	UpdatePayment(paymentID int, replacement *domain.ReplacementInput, attributes map[string]interface{}) (*domain.PaymentView, error)
	RemovePayment(paymentID int) error
	PerformPaymentAction(userID int, action domain.ActionInput) (bool, error)
}

type PaymentHandler struct {
	service      PaymentServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewPaymentHandler(
	service PaymentServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *PaymentHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &PaymentHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

// respondServiceError maps the service error taxonomy onto status codes.
// Everything the service returns is either a ValidationError or a
// NotFoundError; anything else is a programming error worth a 500.
func (h *PaymentHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case paymentErrors.IsNotFoundError(err):
		h.respondError(w, http.StatusNotFound, err.Error())
	case paymentErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("unexpected service error: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Well, this is embarrassing...")
	}
}

func pathID(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.PathValue(name))
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var ids []int
	for _, raw := range query["ids"] {
		id, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid payment id: %s", raw))
			return
		}
		ids = append(ids, id)
	}

	attributes := map[string]string{}
	for key, values := range query {
		if key == "ids" || len(values) == 0 {
			continue
		}
		attributes[key] = values[0]
	}

	payments, err := h.service.GetPayments(ids, attributes)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Payments retrieved successfully.",
		"data":    payments,
	})
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "paymentID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	payments, err := h.service.GetPayments([]int{paymentID}, nil)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if len(payments) == 0 {
		h.respondError(w, http.StatusNotFound, fmt.Sprintf("Payment with id: %d was not found", paymentID))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Payment retrieved successfully.",
		"data":    payments[0],
	})
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var input domain.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, contentErrMsg)
		return
	}

	payment, err := h.service.AddPayment(&input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/payments/%d", payment.PaymentID))
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Payment successfully created.",
		"data":    payment,
	})
}

func (h *PaymentHandler) ReplacePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "paymentID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	var replacement domain.ReplacementInput
	if err := json.NewDecoder(r.Body).Decode(&replacement); err != nil {
		h.respondError(w, http.StatusBadRequest, contentErrMsg)
		return
	}

	payment, err := h.service.UpdatePayment(paymentID, &replacement, nil)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Payment successfully updated.",
		"data":    payment,
	})
}

func (h *PaymentHandler) PatchPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "paymentID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	var attributes map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&attributes); err != nil {
		h.respondError(w, http.StatusBadRequest, contentErrMsg)
		return
	}
	if attributes == nil {
		attributes = map[string]interface{}{}
	}

	payment, err := h.service.UpdatePayment(paymentID, nil, attributes)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Payment successfully updated.",
		"data":    payment,
	})
}

// DeletePayment always answers 204: removing an unknown id is a success.
func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "paymentID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	if err := h.service.RemovePayment(paymentID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentHandler) SetDefaultPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var body struct {
		PaymentID *int `json:"payment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, contentErrMsg)
		return
	}

	ok, err := h.service.PerformPaymentAction(userID, domain.ActionInput{PaymentID: body.PaymentID})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if !ok {
		h.respondError(w, http.StatusNotFound,
			fmt.Sprintf("Payment was not found for the user_id: %d", userID))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Payment with id: %d set as default.", *body.PaymentID),
	})
}

func (h *PaymentHandler) ChargePayment(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var body struct {
		Amount *float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, contentErrMsg)
		return
	}

	ok, err := h.service.PerformPaymentAction(userID, domain.ActionInput{Amount: body.Amount})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Transaction cancelled.")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Your default payment method has been charged $%.2f", *body.Amount),
	})
}
