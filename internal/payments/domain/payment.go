package domain

import (
	paymentErrors "github.com/sebuszqo/PaymentsManager/internal/payments/errors"
)

type PaymentType string

const (
	PaymentTypeCredit PaymentType = "credit"
	PaymentTypeDebit  PaymentType = "debit"
	PaymentTypePayPal PaymentType = "paypal"
)

// IsCard reports whether the type carries card details. Every other type,
// including unknown ones, is treated as a linked account.
func (t PaymentType) IsCard() bool {
	return t == PaymentTypeCredit || t == PaymentTypeDebit
}

type CardDetail struct {
	UserName   string
	CardType   string
	CardNumber string
	Expires    string // MM/YYYY
}

type LinkedAccountDetail struct {
	UserName  string
	UserEmail string
	IsLinked  bool
}

// PaymentRecord is the stored payment method. Exactly one of Card and
// LinkedAccount is set, keyed by PaymentType.
type PaymentRecord struct {
	ID            int
	UserID        int
	Nickname      string
	PaymentType   PaymentType
	IsDefault     bool
	IsRemoved     bool
	ChargeHistory float64
	Card          *CardDetail
	LinkedAccount *LinkedAccountDetail
}

type PaymentRepository interface {
	FindAll() ([]PaymentRecord, error)
	FindByID(paymentID int) (*PaymentRecord, error)
	FindByUser(userID int) ([]PaymentRecord, error)
	FindByAttributes(attributes map[string]string) ([]PaymentRecord, error)
	Save(payment *PaymentRecord) error
	SaveAll(payments []*PaymentRecord) error
}

// PaymentInput is the decoded creation payload. Pointer fields distinguish
// missing keys from zero values.
type PaymentInput struct {
	UserID      *int         `json:"user_id"`
	Nickname    *string      `json:"nickname"`
	PaymentType *string      `json:"payment_type"`
	Details     *DetailInput `json:"details"`
}

type DetailInput struct {
	UserName   *string `json:"user_name"`
	CardType   *string `json:"card_type"`
	CardNumber *string `json:"card_number"`
	Expires    *string `json:"expires"`
	UserEmail  *string `json:"user_email"`
	IsLinked   *bool   `json:"is_linked"`
}

// ReplacementInput is the decoded full-replace payload. The extra fields are
// replace-immutable: callers may echo the stored values but not change them.
type ReplacementInput struct {
	PaymentInput
	IsDefault     *bool    `json:"is_default"`
	IsRemoved     *bool    `json:"is_removed"`
	ChargeHistory *float64 `json:"charge_history"`
}

// ActionInput is the decoded payload for the two payment actions. Which key
// is present decides the action: payment_id selects set-default, amount
// selects charge.
type ActionInput struct {
	PaymentID *int     `json:"payment_id"`
	Amount    *float64 `json:"amount"`
}

type PaymentView struct {
	PaymentID     int         `json:"payment_id"`
	UserID        int         `json:"user_id"`
	Nickname      string      `json:"nickname"`
	PaymentType   PaymentType `json:"payment_type"`
	IsDefault     bool        `json:"is_default"`
	ChargeHistory float64     `json:"charge_history"`
	Details       DetailView  `json:"details"`
}

type DetailView struct {
	UserName   string `json:"user_name"`
	CardType   string `json:"card_type,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
	Expires    string `json:"expires,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
	IsLinked   *bool  `json:"is_linked,omitempty"`
}

// Serialize produces the caller-visible view. Card payments expose only card
// fields, linked accounts only account fields; is_removed is never exposed.
func (p *PaymentRecord) Serialize() PaymentView {
	view := PaymentView{
		PaymentID:     p.ID,
		UserID:        p.UserID,
		Nickname:      p.Nickname,
		PaymentType:   p.PaymentType,
		IsDefault:     p.IsDefault,
		ChargeHistory: p.ChargeHistory,
	}
	if p.Card != nil {
		view.Details = DetailView{
			UserName:   p.Card.UserName,
			CardType:   p.Card.CardType,
			CardNumber: p.Card.CardNumber,
			Expires:    p.Card.Expires,
		}
	} else if p.LinkedAccount != nil {
		isLinked := p.LinkedAccount.IsLinked
		view.Details = DetailView{
			UserName:  p.LinkedAccount.UserName,
			UserEmail: p.LinkedAccount.UserEmail,
			IsLinked:  &isLinked,
		}
	}
	return view
}

func missingField(field string) error {
	return paymentErrors.NewValidationError("Invalid payment: missing " + field)
}

// NewPaymentFromInput builds a PaymentRecord from a creation payload.
// is_default, is_removed and charge_history are forced to their initial
// values regardless of what the caller supplied.
func NewPaymentFromInput(input *PaymentInput) (*PaymentRecord, error) {
	if input == nil {
		return nil, paymentErrors.ErrBadPaymentData
	}
	switch {
	case input.UserID == nil:
		return nil, missingField("user_id")
	case input.Nickname == nil:
		return nil, missingField("nickname")
	case input.PaymentType == nil:
		return nil, missingField("payment_type")
	case input.Details == nil:
		return nil, missingField("details")
	}

	payment := &PaymentRecord{
		UserID:        *input.UserID,
		Nickname:      *input.Nickname,
		PaymentType:   PaymentType(*input.PaymentType),
		IsDefault:     false,
		IsRemoved:     false,
		ChargeHistory: 0.0,
	}

	if payment.PaymentType.IsCard() {
		card, err := parseCardDetail(input.Details)
		if err != nil {
			return nil, err
		}
		payment.Card = card
	} else {
		account, err := parseLinkedAccountDetail(input.Details)
		if err != nil {
			return nil, err
		}
		payment.LinkedAccount = account
	}
	return payment, nil
}

func parseCardDetail(detail *DetailInput) (*CardDetail, error) {
	switch {
	case detail.UserName == nil:
		return nil, missingField("user_name")
	case detail.CardType == nil:
		return nil, missingField("card_type")
	case detail.CardNumber == nil:
		return nil, missingField("card_number")
	case detail.Expires == nil:
		return nil, missingField("expires")
	}
	card := &CardDetail{
		UserName:   *detail.UserName,
		CardType:   *detail.CardType,
		CardNumber: *detail.CardNumber,
		Expires:    *detail.Expires,
	}
	if err := validateCardDetail(card); err != nil {
		return nil, err
	}
	return card, nil
}

// parseLinkedAccountDetail treats the payment as freshly linked: is_linked is
// set unconditionally, the caller cannot opt out at creation.
func parseLinkedAccountDetail(detail *DetailInput) (*LinkedAccountDetail, error) {
	switch {
	case detail.UserName == nil:
		return nil, missingField("user_name")
	case detail.UserEmail == nil:
		return nil, missingField("user_email")
	}
	account := &LinkedAccountDetail{
		UserName:  *detail.UserName,
		UserEmail: *detail.UserEmail,
		IsLinked:  true,
	}
	if err := validateLinkedAccountDetail(account); err != nil {
		return nil, err
	}
	return account, nil
}
