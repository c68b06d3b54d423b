package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

const tenantColumns = `t.id, t.name, t.slug, t.contact_email, t.phone, t.street, t.postal_code,
	t.city, t.country, t.billing_email, t.subscription, t.currency, t.billing_cycle,
	t.is_active, t.subscription_started_at, t.initialized_at, t.created_at, t.updated_at,
	(SELECT COUNT(*) FROM administrators a WHERE a.tenant_id = t.id)`

func (s *Store) CreateTenant(ctx context.Context, t domain.Tenant) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM tenant_tombstones WHERE id = ?`, t.ID).Scan(&one)
		if err == nil {
			return &domain.RetiredIDError{ID: t.ID}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking tombstones: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO tenants (id, name, slug, contact_email, phone, street, postal_code, city,
				country, billing_email, subscription, currency, billing_cycle, is_active,
				subscription_started_at, initialized_at, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.Slug, t.ContactEmail, t.Phone, t.Street, t.PostalCode, t.City,
			t.Country, t.BillingEmail, t.Subscription, t.Currency, t.BillingCycle,
			boolToInt(t.IsActive),
			formatNullTime(t.SubscriptionStartedAt),
			formatNullTime(t.InitializedAt),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		)
		if err != nil {
			switch {
			case isUniqueViolation(err, "tenants.slug"):
				return &domain.SlugConflictError{Slug: t.Slug}
			case isUniqueViolation(err, "tenants.id"):
				return &domain.ConflictError{Reason: "tenant id already in use", Err: err}
			}
			return fmt.Errorf("inserting tenant: %w", err)
		}
		return nil
	})
}

func (s *Store) GetTenant(ctx context.Context, id string) (domain.Tenant, error) {
	t, err := scanTenant(s.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants t WHERE t.id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, err
}

func (s *Store) ListTenants(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants t WHERE 1 = 1`
	var args []any

	if filter.Active != nil {
		query += ` AND t.is_active = ?`
		args = append(args, boolToInt(*filter.Active))
	}

	if filter.Uninitialized {
		query += ` AND t.initialized_at IS NULL`
	}

	query += ` ORDER BY t.created_at DESC, t.id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += ` LIMIT -1`
		}
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

func (s *Store) UpdateTenant(ctx context.Context, t domain.Tenant) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET name = ?, contact_email = ?, phone = ?, street = ?, postal_code = ?,
			city = ?, country = ?, billing_email = ?, subscription = ?, currency = ?,
			billing_cycle = ?, is_active = ?, subscription_started_at = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.ContactEmail, t.Phone, t.Street, t.PostalCode, t.City, t.Country,
		t.BillingEmail, t.Subscription, t.Currency, t.BillingCycle,
		boolToInt(t.IsActive), formatNullTime(t.SubscriptionStartedAt),
		formatTime(s.now()), t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating tenant: %w", err)
	}

	return expectOneRow(result, domain.ErrTenantNotFound)
}

// DeleteTenantCascade removes the tenant and all owned rows in one transaction
// and retires its id.
func (s *Store) DeleteTenantCascade(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tenantExists(ctx, tx, id); err != nil {
			return err
		}

		for _, stmt := range []string{
			`DELETE FROM tenant_settings WHERE tenant_id = ?`,
			`DELETE FROM tenant_modules WHERE tenant_id = ?`,
			`DELETE FROM administrators WHERE tenant_id = ?`,
			`DELETE FROM tenants WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("cascading tenant delete: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tenant_tombstones (id, deleted_at) VALUES (?, ?)`,
			id, formatTime(s.now()),
		); err != nil {
			return fmt.Errorf("retiring tenant id: %w", err)
		}
		return nil
	})
}

func (s *Store) MarkInitialized(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET initialized_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(at), formatTime(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("marking tenant initialized: %w", err)
	}
	return expectOneRow(result, domain.ErrTenantNotFound)
}

func scanTenant(row scanner) (domain.Tenant, error) {
	var t domain.Tenant
	var active int
	var startedAt, initializedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.ContactEmail, &t.Phone, &t.Street,
		&t.PostalCode, &t.City, &t.Country, &t.BillingEmail, &t.Subscription, &t.Currency,
		&t.BillingCycle, &active, &startedAt, &initializedAt, &createdAt, &updatedAt,
		&t.AdminCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tenant{}, err
		}
		return domain.Tenant{}, fmt.Errorf("scanning tenant: %w", err)
	}

	t.IsActive = active == 1
	t.SubscriptionStartedAt = parseNullTime(startedAt)
	t.InitializedAt = parseNullTime(initializedAt)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)

	return t, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
