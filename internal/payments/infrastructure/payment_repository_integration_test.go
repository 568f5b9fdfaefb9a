//go:build integration

// Run with: go test -tags integration ./internal/payments/infrastructure/...
// Requires a local Docker daemon.

package infrastructure

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sebuszqo/PaymentsManager/internal/payments/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRepository(t *testing.T) *PaymentRepository {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("payments"),
		postgres.WithUsername("payments"),
		postgres.WithPassword("payments"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, EnsureSchema(db))
	return NewPaymentRepository(db)
}

func TestPaymentRepository_SaveAndFind(t *testing.T) {
	repo := setupRepository(t)

	card := &domain.PaymentRecord{
		UserID:      1,
		Nickname:    "my credit",
		PaymentType: domain.PaymentTypeCredit,
		Card: &domain.CardDetail{
			UserName:   "Jimmy Jones",
			CardType:   "Mastercard",
			CardNumber: "1111222233334444",
			Expires:    "01/2019",
		},
	}
	require.NoError(t, repo.Save(card))
	assert.NotZero(t, card.ID)

	paypal := &domain.PaymentRecord{
		UserID:      1,
		Nickname:    "my paypal",
		PaymentType: domain.PaymentTypePayPal,
		LinkedAccount: &domain.LinkedAccountDetail{
			UserName:  "John Jameson",
			UserEmail: "jj@aol.com",
			IsLinked:  true,
		},
	}
	require.NoError(t, repo.Save(paypal))

	found, err := repo.FindByID(card.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.Card)
	assert.Equal(t, "Jimmy Jones", found.Card.UserName)
	assert.Equal(t, "1111222233334444", found.Card.CardNumber)
	assert.Nil(t, found.LinkedAccount)

	found, err = repo.FindByID(paypal.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.LinkedAccount)
	assert.True(t, found.LinkedAccount.IsLinked)
	assert.Nil(t, found.Card)

	missing, err := repo.FindByID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byUser, err := repo.FindByUser(1)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
}

func TestPaymentRepository_FindByAttributes(t *testing.T) {
	repo := setupRepository(t)

	paypal := &domain.PaymentRecord{
		UserID:      1,
		Nickname:    "my paypal",
		PaymentType: domain.PaymentTypePayPal,
		LinkedAccount: &domain.LinkedAccountDetail{
			UserName:  "John Jameson",
			UserEmail: "jj@aol.com",
			IsLinked:  true,
		},
	}
	require.NoError(t, repo.Save(paypal))

	found, err := repo.FindByAttributes(map[string]string{"user_id": "1", "nickname": "my paypal"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, paypal.ID, found[0].ID)

	none, err := repo.FindByAttributes(map[string]string{"payment_type": "Amateurcard"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.FindByAttributes(map[string]string{"charge_history": "10"})
	assert.Error(t, err)
}

func TestPaymentRepository_SaveAllFlipsDefaultAtomically(t *testing.T) {
	repo := setupRepository(t)

	first := &domain.PaymentRecord{
		UserID:      7,
		Nickname:    "old default",
		PaymentType: domain.PaymentTypeDebit,
		IsDefault:   true,
		Card: &domain.CardDetail{
			UserName:   "Jeremy Jenkins",
			CardType:   "Visa",
			CardNumber: "4444333322221111",
			Expires:    "02/2030",
		},
	}
	second := &domain.PaymentRecord{
		UserID:      7,
		Nickname:    "new default",
		PaymentType: domain.PaymentTypePayPal,
		LinkedAccount: &domain.LinkedAccountDetail{
			UserName:  "Jeremy Jenkins",
			UserEmail: "jenkins@example.com",
			IsLinked:  true,
		},
	}
	require.NoError(t, repo.Save(first))
	require.NoError(t, repo.Save(second))

	first.IsDefault = false
	second.IsDefault = true
	require.NoError(t, repo.SaveAll([]*domain.PaymentRecord{first, second}))

	records, err := repo.FindByUser(7)
	require.NoError(t, err)
	require.Len(t, records, 2)
	defaults := 0
	for _, record := range records {
		if record.IsDefault {
			defaults++
			assert.Equal(t, "new default", record.Nickname)
		}
	}
	assert.Equal(t, 1, defaults)
}
