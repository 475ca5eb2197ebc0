package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/colabsdev/colabs-be/internal/api/domain"
	"github.com/colabsdev/colabs-be/internal/api/model"
)

const paymentColumns = `
	payment_id, tx_ref, job_id, freelancer_id, employer_id, amount,
	currency, status, paid_at, created_at, updated_at
`

func (s *Storage) CreatePayment(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (
			payment_id, tx_ref, job_id, freelancer_id, employer_id, amount,
			currency, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		p.PaymentID,
		p.TxRef,
		p.JobID,
		p.FreelancerID,
		p.EmployerID,
		p.Amount,
		p.Currency,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (s *Storage) GetPaymentByTxRef(ctx context.Context, txRef string) (*model.Payment, error) {
	var p model.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE tx_ref = $1`

	err := s.db.GetContext(ctx, &p, query, txRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &p, nil
}

// SettlePayment transitions a payment from pending to paid and credits the
// freelancer's earnings, both inside one transaction. The pending guard in
// the UPDATE's WHERE clause is a compare-and-swap: when the webhook and the
// manual confirmation race for the same tx_ref, exactly one caller sees a
// row updated and performs the credit. The boolean reports whether this
// caller won; a losing caller still gets the payment back so it can treat
// the settlement as already done.
func (s *Storage) SettlePayment(ctx context.Context, txRef string) (*model.Payment, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin settlement: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var p model.Payment
	query := `
		UPDATE payments
		SET status = $1,
		    paid_at = NOW(),
		    updated_at = NOW()
		WHERE tx_ref = $2
		  AND status = $3
		RETURNING ` + paymentColumns

	err = tx.GetContext(ctx, &p, query, domain.PaymentStatusPaid, txRef, domain.PaymentStatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the swap or the payment never existed; read without the
			// status guard to tell the two apart.
			existing, getErr := s.GetPaymentByTxRef(ctx, txRef)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to settle payment: %w", err)
	}

	credit := `
		UPDATE users
		SET earnings = earnings + $1,
		    updated_at = NOW()
		WHERE user_id = $2
	`
	if _, err := tx.ExecContext(ctx, credit, p.Amount, p.FreelancerID); err != nil {
		return nil, false, fmt.Errorf("failed to credit earnings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return &p, true, nil
}
