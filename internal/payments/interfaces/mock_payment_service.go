package interfaces

import "github.com/sebuszqo/PaymentsManager/internal/payments/domain"

// MockPaymentService records the arguments it was called with and returns the
// canned results, so handler tests only exercise decoding and status mapping.
type MockPaymentService struct {
	View  *domain.PaymentView
	Views []domain.PaymentView
	OK    bool
	Err   error

	AddedInput     *domain.PaymentInput
	RequestedIDs   []int
	RequestedAttrs map[string]string
	UpdatedID      int
	Replacement    *domain.ReplacementInput
	PatchAttrs     map[string]interface{}
	RemovedID      int
	ActionUserID   int
	Action         domain.ActionInput
}

func (m *MockPaymentService) AddPayment(input *domain.PaymentInput) (*domain.PaymentView, error) {
	m.AddedInput = input
	if m.Err != nil {
		return nil, m.Err
	}
	return m.View, nil
}

func (m *MockPaymentService) GetPayments(ids []int, attributes map[string]string) ([]domain.PaymentView, error) {
	m.RequestedIDs = ids
	m.RequestedAttrs = attributes
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Views, nil
}

func (m *MockPaymentService) UpdatePayment(paymentID int, replacement *domain.ReplacementInput, attributes map[string]interface{}) (*domain.PaymentView, error) {
	m.UpdatedID = paymentID
	m.Replacement = replacement
	m.PatchAttrs = attributes
	if m.Err != nil {
		return nil, m.Err
	}
	return m.View, nil
}

func (m *MockPaymentService) RemovePayment(paymentID int) error {
	m.RemovedID = paymentID
	return m.Err
}

func (m *MockPaymentService) PerformPaymentAction(userID int, action domain.ActionInput) (bool, error) {
	m.ActionUserID = userID
	m.Action = action
	if m.Err != nil {
		return false, m.Err
	}
	return m.OK, nil
}
