package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/badoux/checkmail"
	paymentErrors "github.com/sebuszqo/PaymentsManager/internal/payments/errors"
)

var (
	digitPattern      = regexp.MustCompile(`\d`)
	cardNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)
)

// patchableFields is the whitelist for partial updates. Any other key rejects
// the whole patch. "defaults" is accepted for compatibility but has no stored
// counterpart, so patching it changes nothing.
var patchableFields = map[string]struct{}{
	"nickname":     {},
	"payment_type": {},
	"defaults":     {},
}

func validateCardDetail(card *CardDetail) error {
	if digitPattern.MatchString(card.UserName) {
		return paymentErrors.NewValidationError("user_name must not contain digits")
	}
	if !cardNumberPattern.MatchString(card.CardNumber) {
		return paymentErrors.NewValidationError("card_number must be exactly 16 digits")
	}
	if _, err := time.Parse(expiresLayout, card.Expires); err != nil {
		return paymentErrors.NewValidationError("expires must use the MM/YYYY format")
	}
	return nil
}

func validateLinkedAccountDetail(account *LinkedAccountDetail) error {
	if digitPattern.MatchString(account.UserName) {
		return paymentErrors.NewValidationError("user_name must not contain digits")
	}
	if err := checkmail.ValidateFormat(account.UserEmail); err != nil {
		return paymentErrors.NewValidationError("user_email is not a valid e-mail address")
	}
	return nil
}

// ValidateReplacement checks a full-replace (PUT) payload against the stored
// record. is_removed, is_default, charge_history and user_id are
// replace-immutable: the payload may echo the stored values but not change
// them. The type-specific detail rules then apply to the incoming detail.
func ValidateReplacement(current *PaymentRecord, replacement *ReplacementInput) error {
	if replacement == nil {
		return paymentErrors.ErrBadPaymentData
	}
	if replacement.IsRemoved != nil && *replacement.IsRemoved {
		return paymentErrors.NewValidationError("is_removed cannot be set through an update")
	}
	if replacement.IsDefault != nil && *replacement.IsDefault != current.IsDefault {
		return paymentErrors.NewValidationError("is_default cannot be changed through an update")
	}
	if replacement.ChargeHistory != nil && *replacement.ChargeHistory != current.ChargeHistory {
		return paymentErrors.NewValidationError("charge_history cannot be changed through an update")
	}
	if replacement.UserID != nil && *replacement.UserID != current.UserID {
		return paymentErrors.NewValidationError("user_id cannot be changed through an update")
	}
	switch {
	case replacement.Nickname == nil:
		return missingField("nickname")
	case replacement.PaymentType == nil:
		return missingField("payment_type")
	case replacement.Details == nil:
		return missingField("details")
	}
	if PaymentType(*replacement.PaymentType).IsCard() {
		if _, err := parseCardDetail(replacement.Details); err != nil {
			return err
		}
		return nil
	}
	if replacement.Details.IsLinked == nil {
		return missingField("is_linked")
	}
	account := &LinkedAccountDetail{IsLinked: *replacement.Details.IsLinked}
	if replacement.Details.UserName == nil || replacement.Details.UserEmail == nil {
		return paymentErrors.ErrBadPaymentData
	}
	account.UserName = *replacement.Details.UserName
	account.UserEmail = *replacement.Details.UserEmail
	return validateLinkedAccountDetail(account)
}

// ApplyReplacement validates a full-replace payload and returns the replaced
// record. Identity and action-owned fields carry over from the stored record
// untouched.
func ApplyReplacement(current *PaymentRecord, replacement *ReplacementInput) (*PaymentRecord, error) {
	if err := ValidateReplacement(current, replacement); err != nil {
		return nil, err
	}
	updated := &PaymentRecord{
		ID:            current.ID,
		UserID:        current.UserID,
		Nickname:      *replacement.Nickname,
		PaymentType:   PaymentType(*replacement.PaymentType),
		IsDefault:     current.IsDefault,
		IsRemoved:     current.IsRemoved,
		ChargeHistory: current.ChargeHistory,
	}
	if updated.PaymentType.IsCard() {
		card, err := parseCardDetail(replacement.Details)
		if err != nil {
			return nil, err
		}
		updated.Card = card
	} else {
		updated.LinkedAccount = &LinkedAccountDetail{
			UserName:  *replacement.Details.UserName,
			UserEmail: *replacement.Details.UserEmail,
			IsLinked:  *replacement.Details.IsLinked,
		}
	}
	return updated, nil
}

// ValidatePatch checks a partial-update payload against the whitelist before
// any field is copied. Whitelisted values must be strings.
func ValidatePatch(attributes map[string]interface{}) error {
	if len(attributes) == 0 {
		return paymentErrors.ErrNoUpdateData
	}
	for key, value := range attributes {
		if _, ok := patchableFields[key]; !ok {
			return paymentErrors.NewValidationError(fmt.Sprintf("Invalid field for partial update: %s", key))
		}
		if key == "nickname" || key == "payment_type" {
			if _, ok := value.(string); !ok {
				return paymentErrors.NewValidationError(fmt.Sprintf("Field %s must be a string", key))
			}
		}
	}
	return nil
}
