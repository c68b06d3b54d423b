package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// bootstrapDefaults are written by BootstrapSettings when absent.
var bootstrapDefaults = map[string]string{
	"locale":      "de-DE",
	"timezone":    "Europe/Berlin",
	"date_format": "DD.MM.YYYY",
	"week_start":  "monday",
}

func (s *Store) ActivateModules(ctx context.Context, tenantID string, modules []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tenantExists(ctx, tx, tenantID); err != nil {
			return err
		}
		now := formatTime(s.now())
		for _, m := range modules {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO tenant_modules (tenant_id, module, activated_at) VALUES (?, ?, ?)`,
				tenantID, m, now,
			); err != nil {
				return fmt.Errorf("activating module %q: %w", m, err)
			}
		}
		return nil
	})
}

// PutSettings upserts the given keys.
func (s *Store) PutSettings(ctx context.Context, tenantID string, settings map[string]string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tenantExists(ctx, tx, tenantID); err != nil {
			return err
		}
		now := formatTime(s.now())
		for _, key := range sortedKeys(settings) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tenant_settings (tenant_id, key, value, updated_at) VALUES (?, ?, ?, ?)
				 ON CONFLICT (tenant_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				tenantID, key, settings[key], now,
			); err != nil {
				return fmt.Errorf("writing setting %q: %w", key, err)
			}
		}
		return nil
	})
}

// BootstrapSettings fills in regional defaults without overwriting existing values.
func (s *Store) BootstrapSettings(ctx context.Context, tenantID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tenantExists(ctx, tx, tenantID); err != nil {
			return err
		}
		now := formatTime(s.now())
		for _, key := range sortedKeys(bootstrapDefaults) {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO tenant_settings (tenant_id, key, value, updated_at) VALUES (?, ?, ?, ?)`,
				tenantID, key, bootstrapDefaults[key], now,
			); err != nil {
				return fmt.Errorf("bootstrapping setting %q: %w", key, err)
			}
		}
		return nil
	})
}

// Modules returns the active module names for a tenant, sorted.
func (s *Store) Modules(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT module FROM tenant_modules WHERE tenant_id = ? ORDER BY module`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Settings returns all settings for a tenant.
func (s *Store) Settings(ctx context.Context, tenantID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM tenant_settings WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
