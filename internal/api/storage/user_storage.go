package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/colabsdev/colabs-be/internal/api/model"
)

const userColumns = `
	user_id, first_name, last_name, email, role, earnings,
	sub_account_id, bank_code, account_number, account_name, business_name,
	created_at, updated_at
`

func (s *Storage) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	err := s.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// UpdateBankInfo persists a gateway sub-account handle together with the
// bank details it was registered from.
func (s *Storage) UpdateBankInfo(ctx context.Context, userID, subAccountID, bankCode, accountNumber, accountName, businessName string) error {
	query := `
		UPDATE users
		SET sub_account_id = $1,
		    bank_code = $2,
		    account_number = $3,
		    account_name = $4,
		    business_name = $5,
		    updated_at = NOW()
		WHERE user_id = $6
	`

	result, err := s.db.ExecContext(ctx, query, subAccountID, bankCode, accountNumber, accountName, businessName, userID)
	if err != nil {
		return fmt.Errorf("failed to update bank info: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
