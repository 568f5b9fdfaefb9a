package infrastructure

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/sebuszqo/PaymentsManager/internal/payments/domain"
)

const paymentColumns = "id, user_id, nickname, payment_type, is_default, is_removed, charge_history, user_name, card_type, card_number, expires, user_email, is_linked"

// Schema is the embedded-detail payments table. Card and linked-account
// columns share one row; is_linked is null for cards.
const Schema = `
CREATE TABLE IF NOT EXISTS payments (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL,
	nickname VARCHAR(20) NOT NULL,
	payment_type VARCHAR(10) NOT NULL,
	is_default BOOLEAN NOT NULL DEFAULT FALSE,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	charge_history DOUBLE PRECISION NOT NULL DEFAULT 0.0,
	user_name VARCHAR(50) NOT NULL,
	card_type VARCHAR(10),
	card_number VARCHAR(16),
	expires VARCHAR(7),
	user_email VARCHAR(50),
	is_linked BOOLEAN
);
CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments (user_id);
`

// filterableColumns are the attribute-query keys the repository accepts.
// Anything else is a query error the service layer translates for callers.
var filterableColumns = map[string]struct{}{
	"user_id":      {},
	"nickname":     {},
	"payment_type": {},
	"is_default":   {},
}

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

func (r *PaymentRepository) FindAll() ([]domain.PaymentRecord, error) {
	rows, err := r.db.Query("SELECT " + paymentColumns + " FROM payments ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *PaymentRepository) FindByID(paymentID int) (*domain.PaymentRecord, error) {
	row := r.db.QueryRow("SELECT "+paymentColumns+" FROM payments WHERE id = $1", paymentID)
	payment, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) FindByUser(userID int) ([]domain.PaymentRecord, error) {
	rows, err := r.db.Query("SELECT "+paymentColumns+" FROM payments WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *PaymentRepository) FindByAttributes(attributes map[string]string) ([]domain.PaymentRecord, error) {
	var clauses []string
	var args []interface{}

	for key, value := range attributes {
		if _, ok := filterableColumns[key]; !ok {
			return nil, fmt.Errorf("payments do not contain the field: %s", key)
		}
		arg, err := filterArgument(key, value)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", key, len(args)))
	}

	query := "SELECT " + paymentColumns + " FROM payments"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func filterArgument(key, value string) (interface{}, error) {
	switch key {
	case "user_id":
		id, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for field %s: %s", key, value)
		}
		return id, nil
	case "is_default":
		flag, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for field %s: %s", key, value)
		}
		return flag, nil
	default:
		return value, nil
	}
}

// Save inserts new records (assigning the id) and updates existing ones.
func (r *PaymentRepository) Save(payment *domain.PaymentRecord) error {
	return save(r.db, payment)
}

// SaveAll persists the whole record set inside one transaction so multi-row
// mutations like set-default commit atomically.
func (r *PaymentRepository) SaveAll(payments []*domain.PaymentRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, payment := range payments {
		if err := save(tx, payment); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type execQuerier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func save(db execQuerier, payment *domain.PaymentRecord) error {
	userName, cardType, cardNumber, expires, userEmail, isLinked := detailColumns(payment)

	if payment.ID == 0 {
		query := `INSERT INTO payments
			(user_id, nickname, payment_type, is_default, is_removed, charge_history, user_name, card_type, card_number, expires, user_email, is_linked)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
		return db.QueryRow(query,
			payment.UserID, payment.Nickname, string(payment.PaymentType),
			payment.IsDefault, payment.IsRemoved, payment.ChargeHistory,
			userName, cardType, cardNumber, expires, userEmail, isLinked,
		).Scan(&payment.ID)
	}

	query := `UPDATE payments SET
		user_id = $1, nickname = $2, payment_type = $3, is_default = $4, is_removed = $5, charge_history = $6,
		user_name = $7, card_type = $8, card_number = $9, expires = $10, user_email = $11, is_linked = $12
		WHERE id = $13`
	_, err := db.Exec(query,
		payment.UserID, payment.Nickname, string(payment.PaymentType),
		payment.IsDefault, payment.IsRemoved, payment.ChargeHistory,
		userName, cardType, cardNumber, expires, userEmail, isLinked,
		payment.ID,
	)
	return err
}

func detailColumns(payment *domain.PaymentRecord) (userName string, cardType, cardNumber, expires, userEmail sql.NullString, isLinked sql.NullBool) {
	if payment.Card != nil {
		userName = payment.Card.UserName
		cardType = sql.NullString{String: payment.Card.CardType, Valid: true}
		cardNumber = sql.NullString{String: payment.Card.CardNumber, Valid: true}
		expires = sql.NullString{String: payment.Card.Expires, Valid: true}
	} else if payment.LinkedAccount != nil {
		userName = payment.LinkedAccount.UserName
		userEmail = sql.NullString{String: payment.LinkedAccount.UserEmail, Valid: true}
		isLinked = sql.NullBool{Bool: payment.LinkedAccount.IsLinked, Valid: true}
	}
	return
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	var payment domain.PaymentRecord
	var paymentType, userName string
	var cardType, cardNumber, expires, userEmail sql.NullString
	var isLinked sql.NullBool

	err := row.Scan(
		&payment.ID, &payment.UserID, &payment.Nickname, &paymentType,
		&payment.IsDefault, &payment.IsRemoved, &payment.ChargeHistory,
		&userName, &cardType, &cardNumber, &expires, &userEmail, &isLinked,
	)
	if err != nil {
		return nil, err
	}
	payment.PaymentType = domain.PaymentType(paymentType)

	// A null is_linked marks a card row, anything else a linked account.
	if isLinked.Valid {
		payment.LinkedAccount = &domain.LinkedAccountDetail{
			UserName:  userName,
			UserEmail: userEmail.String,
			IsLinked:  isLinked.Bool,
		}
	} else {
		payment.Card = &domain.CardDetail{
			UserName:   userName,
			CardType:   cardType.String,
			CardNumber: cardNumber.String,
			Expires:    expires.String,
		}
	}
	return &payment, nil
}

func scanPayments(rows *sql.Rows) ([]domain.PaymentRecord, error) {
	var payments []domain.PaymentRecord
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
