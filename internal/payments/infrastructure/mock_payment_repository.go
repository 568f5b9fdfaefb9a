package infrastructure

import (
	"fmt"

	"github.com/sebuszqo/PaymentsManager/internal/payments/domain"
)

// MockPaymentRepository is an in-memory PaymentRepository for service tests.
// It mirrors the store contract: Save assigns ids, FindByAttributes rejects
// unknown fields, reads return copies.
type MockPaymentRepository struct {
	Payments []domain.PaymentRecord
	Err      error
	nextID   int
}

func (m *MockPaymentRepository) FindAll() ([]domain.PaymentRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]domain.PaymentRecord{}, m.Payments...), nil
}

func (m *MockPaymentRepository) FindByID(paymentID int) (*domain.PaymentRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Payments {
		if m.Payments[i].ID == paymentID {
			payment := m.Payments[i]
			return &payment, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) FindByUser(userID int) ([]domain.PaymentRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var payments []domain.PaymentRecord
	for i := range m.Payments {
		if m.Payments[i].UserID == userID {
			payments = append(payments, m.Payments[i])
		}
	}
	return payments, nil
}

func (m *MockPaymentRepository) FindByAttributes(attributes map[string]string) ([]domain.PaymentRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var payments []domain.PaymentRecord
	for i := range m.Payments {
		payment := m.Payments[i]
		matches := true
		for key, value := range attributes {
			switch key {
			case "user_id":
				matches = matches && fmt.Sprintf("%d", payment.UserID) == value
			case "nickname":
				matches = matches && payment.Nickname == value
			case "payment_type":
				matches = matches && string(payment.PaymentType) == value
			case "is_default":
				matches = matches && fmt.Sprintf("%t", payment.IsDefault) == value
			default:
				return nil, fmt.Errorf("payments do not contain the field: %s", key)
			}
		}
		if matches {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

func (m *MockPaymentRepository) Save(payment *domain.PaymentRecord) error {
	if m.Err != nil {
		return m.Err
	}
	if payment.ID == 0 {
		m.nextID++
		payment.ID = m.nextID
		m.Payments = append(m.Payments, *payment)
		return nil
	}
	for i := range m.Payments {
		if m.Payments[i].ID == payment.ID {
			m.Payments[i] = *payment
			return nil
		}
	}
	m.Payments = append(m.Payments, *payment)
	return nil
}

func (m *MockPaymentRepository) SaveAll(payments []*domain.PaymentRecord) error {
	for _, payment := range payments {
		if err := m.Save(payment); err != nil {
			return err
		}
	}
	return nil
}

// Seed stores records directly, assigning ids the way the store would.
func (m *MockPaymentRepository) Seed(payments ...domain.PaymentRecord) {
	for _, payment := range payments {
		if payment.ID == 0 {
			m.nextID++
			payment.ID = m.nextID
		} else if payment.ID > m.nextID {
			m.nextID = payment.ID
		}
		m.Payments = append(m.Payments, payment)
	}
}
