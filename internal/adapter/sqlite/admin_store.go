package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

const adminColumns = `id, tenant_id, email, salutation, first_name, last_name, phone, position,
	role, status, password_hash, last_invited_at, created_at, updated_at`

func (s *Store) CreateAdmin(ctx context.Context, a domain.Administrator) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tenantExists(ctx, tx, a.TenantID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO administrators (`+adminColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.TenantID, a.Email, a.Salutation, a.FirstName, a.LastName, a.Phone,
			a.Position, a.Role, string(a.Status), a.PasswordHash,
			formatNullTime(a.LastInvitedAt),
			formatTime(a.CreatedAt),
			formatTime(a.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err, "administrators.email") {
				return &domain.DuplicateAdminError{TenantID: a.TenantID, Email: a.Email}
			}
			if isUniqueViolation(err, "") {
				return &domain.ConflictError{Reason: "administrator id already in use", Err: err}
			}
			return fmt.Errorf("inserting administrator: %w", err)
		}
		return nil
	})
}

func (s *Store) GetAdmin(ctx context.Context, id string) (domain.Administrator, error) {
	a, err := scanAdmin(s.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM administrators WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Administrator{}, domain.ErrAdminNotFound
	}
	return a, err
}

func (s *Store) ListAdmins(ctx context.Context, tenantID string) ([]domain.Administrator, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM administrators WHERE tenant_id = ?
		 ORDER BY created_at, id`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing administrators: %w", err)
	}
	defer rows.Close()

	var admins []domain.Administrator
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// UpdateAdmin writes the mutable fields and status. Email and tenant binding are never updated.
func (s *Store) UpdateAdmin(ctx context.Context, a domain.Administrator) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE administrators SET salutation = ?, first_name = ?, last_name = ?, phone = ?,
			position = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		a.Salutation, a.FirstName, a.LastName, a.Phone, a.Position, string(a.Status),
		formatTime(s.now()), a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating administrator: %w", err)
	}
	return expectOneRow(result, domain.ErrAdminNotFound)
}

func (s *Store) DeleteAdmin(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM administrators WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting administrator: %w", err)
	}
	return expectOneRow(result, domain.ErrAdminNotFound)
}

func (s *Store) MarkInvited(ctx context.Context, tenantID, email string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE administrators SET last_invited_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND email = lower(?)`,
		formatTime(at), formatTime(s.now()), tenantID, email,
	)
	if err != nil {
		return fmt.Errorf("recording invitation: %w", err)
	}
	return expectOneRow(result, domain.ErrAdminNotFound)
}

func scanAdmin(row scanner) (domain.Administrator, error) {
	var a domain.Administrator
	var status string
	var invitedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&a.ID, &a.TenantID, &a.Email, &a.Salutation, &a.FirstName, &a.LastName,
		&a.Phone, &a.Position, &a.Role, &status, &a.PasswordHash, &invitedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Administrator{}, err
		}
		return domain.Administrator{}, fmt.Errorf("scanning administrator: %w", err)
	}

	a.Status = domain.AdminStatus(status)
	a.LastInvitedAt = parseNullTime(invitedAt)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return a, nil
}
