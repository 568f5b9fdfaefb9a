package application

import (
	"fmt"
	"time"

	"github.com/sebuszqo/PaymentsManager/internal/payments/domain"
	paymentErrors "github.com/sebuszqo/PaymentsManager/internal/payments/errors"
)

// PaymentService orchestrates all payment method operations. It owns the
// invariants: at most one non-removed default per user, soft-removed records
// are invisible to reads, and no validation failure mutates stored state.
type PaymentService struct {
	repo domain.PaymentRepository
	now  func() time.Time
}

func NewPaymentService(repo domain.PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo, now: time.Now}
}

// storeError keeps storage-layer error types from crossing the service
// boundary: callers only ever see the payment error taxonomy.
func storeError(err error) error {
	return paymentErrors.NewValidationError("Payment store request failed: " + err.Error())
}

func (s *PaymentService) AddPayment(input *domain.PaymentInput) (*domain.PaymentView, error) {
	payment, err := domain.NewPaymentFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(payment); err != nil {
		return nil, storeError(err)
	}
	view := payment.Serialize()
	return &view, nil
}

// GetPayments retrieves payment views with ids taking precedence over
// attribute filters. Unknown ids are silently absent from the result and
// soft-removed records are filtered out of every branch.
func (s *PaymentService) GetPayments(ids []int, attributes map[string]string) ([]domain.PaymentView, error) {
	var records []domain.PaymentRecord

	switch {
	case len(ids) > 0:
		for _, id := range ids {
			payment, err := s.repo.FindByID(id)
			if err != nil {
				return nil, storeError(err)
			}
			if payment != nil {
				records = append(records, *payment)
			}
		}
	case len(attributes) > 0:
		found, err := s.repo.FindByAttributes(attributes)
		if err != nil {
			return nil, storeError(err)
		}
		records = found
	default:
		found, err := s.repo.FindAll()
		if err != nil {
			return nil, storeError(err)
		}
		records = found
	}

	views := []domain.PaymentView{}
	for i := range records {
		if records[i].IsRemoved {
			continue
		}
		views = append(views, records[i].Serialize())
	}
	return views, nil
}

// UpdatePayment performs either a full replace or a partial update, never
// both. All validation happens against the stored record before any write.
func (s *PaymentService) UpdatePayment(paymentID int, replacement *domain.ReplacementInput, attributes map[string]interface{}) (*domain.PaymentView, error) {
	if replacement == nil && attributes == nil {
		return nil, paymentErrors.ErrNoUpdateData
	}

	current, err := s.repo.FindByID(paymentID)
	if err != nil {
		return nil, storeError(err)
	}
	if current == nil || current.IsRemoved {
		return nil, paymentErrors.NewPaymentNotFoundError(paymentID)
	}

	var updated *domain.PaymentRecord
	if replacement != nil {
		updated, err = domain.ApplyReplacement(current, replacement)
		if err != nil {
			return nil, err
		}
	} else {
		if err := domain.ValidatePatch(attributes); err != nil {
			return nil, err
		}
		patched := *current
		if nickname, ok := attributes["nickname"].(string); ok {
			patched.Nickname = nickname
		}
		if paymentType, ok := attributes["payment_type"].(string); ok {
			patched.PaymentType = domain.PaymentType(paymentType)
		}
		updated = &patched
	}

	if err := s.repo.Save(updated); err != nil {
		return nil, storeError(err)
	}
	view := updated.Serialize()
	return &view, nil
}

// RemovePayment soft-deletes a payment. Removing an unknown or already
// removed id is a no-op success: deletes are idempotent by design.
func (s *PaymentService) RemovePayment(paymentID int) error {
	payment, err := s.repo.FindByID(paymentID)
	if err != nil {
		return storeError(err)
	}
	if payment == nil {
		return nil
	}
	payment.IsRemoved = true
	if err := s.repo.Save(payment); err != nil {
		return storeError(err)
	}
	return nil
}

// PerformPaymentAction dispatches on which key the payload carries:
// payment_id selects set-default, amount selects charge.
func (s *PaymentService) PerformPaymentAction(userID int, action domain.ActionInput) (bool, error) {
	switch {
	case action.PaymentID != nil:
		return s.setDefaultPayment(userID, *action.PaymentID)
	case action.Amount != nil:
		return s.chargeDefaultPayment(userID, *action.Amount)
	default:
		return false, paymentErrors.ErrBadActionData
	}
}

// setDefaultPayment flips the chosen record to default and clears every
// other record of the same user, persisted as one atomic write. A payment_id
// that is not among the user's payments is a false result, not an error.
func (s *PaymentService) setDefaultPayment(userID, paymentID int) (bool, error) {
	payments, err := s.activeUserPayments(userID)
	if err != nil {
		return false, err
	}

	var target *domain.PaymentRecord
	for i := range payments {
		if payments[i].ID == paymentID {
			target = payments[i]
			break
		}
	}
	if target == nil {
		return false, nil
	}

	for i := range payments {
		payments[i].IsDefault = payments[i].ID == paymentID
	}
	if err := s.repo.SaveAll(payments); err != nil {
		return false, storeError(err)
	}
	return true, nil
}

func (s *PaymentService) chargeDefaultPayment(userID int, amount float64) (bool, error) {
	if amount <= 0 {
		return false, paymentErrors.NewValidationError("Invalid order amount. Transaction cancelled. Please check your order and try again.")
	}

	payments, err := s.activeUserPayments(userID)
	if err != nil {
		return false, err
	}

	var target *domain.PaymentRecord
	for i := range payments {
		if payments[i].IsDefault {
			target = payments[i]
			break
		}
	}
	if target == nil {
		return false, paymentErrors.NewValidationError(fmt.Sprintf(
			"No default payment method selected for user_id: %d. Please update the default_payment first.", userID))
	}

	if target.LinkedAccount != nil && !target.LinkedAccount.IsLinked {
		return false, paymentErrors.NewValidationError(fmt.Sprintf(
			"Your payment method %q is not linked. Transaction cancelled. Please update your account and try your order again.", target.Nickname))
	}
	if target.Card != nil {
		expired, err := target.Card.IsExpired(s.now())
		if err != nil {
			return false, err
		}
		if expired {
			return false, paymentErrors.NewValidationError(fmt.Sprintf(
				"Your payment method %q is expired. Transaction cancelled. Please update your account and try your order again.", target.Nickname))
		}
	}

	target.ChargeHistory += amount
	if err := s.repo.Save(target); err != nil {
		return false, storeError(err)
	}
	return true, nil
}

// activeUserPayments loads the user's non-removed records. An empty set and a
// store failure both mean the action has nothing to work on.
func (s *PaymentService) activeUserPayments(userID int) ([]*domain.PaymentRecord, error) {
	records, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, paymentErrors.NewValidationError(fmt.Sprintf("Payments not found for the user_id: %d", userID))
	}
	payments := make([]*domain.PaymentRecord, 0, len(records))
	for i := range records {
		if records[i].IsRemoved {
			continue
		}
		payments = append(payments, &records[i])
	}
	if len(payments) == 0 {
		return nil, paymentErrors.NewValidationError(fmt.Sprintf("Payments not found for the user_id: %d", userID))
	}
	return payments, nil
}

// ExpiredDefaults lists non-removed default cards that are already past
// their expiry month. The audit scheduler logs them periodically.
func (s *PaymentService) ExpiredDefaults() ([]domain.PaymentView, error) {
	records, err := s.repo.FindAll()
	if err != nil {
		return nil, storeError(err)
	}
	views := []domain.PaymentView{}
	for i := range records {
		record := &records[i]
		if record.IsRemoved || !record.IsDefault || record.Card == nil {
			continue
		}
		expired, err := record.Card.IsExpired(s.now())
		if err != nil || !expired {
			continue
		}
		views = append(views, record.Serialize())
	}
	return views, nil
}
