package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// --- Mocks ---

// mockTenantStore is an in-memory TenantStore with injectable errors and call counters.
type mockTenantStore struct {
	mu         sync.Mutex
	tenants    map[string]domain.Tenant
	tombstones map[string]bool
	calls      map[string]int

	createErr error
	updateErr error
	deleteErr error
	markErr   error

	// deleteStarted is closed when DeleteTenantCascade is entered, and the
	// call then blocks until deleteRelease is closed. Both are optional.
	deleteStarted chan struct{}
	deleteRelease chan struct{}
	// removeOnDeleteErr drops the tenant even when deleteErr is returned.
	removeOnDeleteErr bool
}

func newMockTenantStore() *mockTenantStore {
	return &mockTenantStore{
		tenants:    make(map[string]domain.Tenant),
		tombstones: make(map[string]bool),
		calls:      make(map[string]int),
	}
}

func (m *mockTenantStore) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockTenantStore) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockTenantStore) put(t domain.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
}

func (m *mockTenantStore) CreateTenant(_ context.Context, t domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["create"]++
	if m.createErr != nil {
		return m.createErr
	}
	if m.tombstones[t.ID] {
		return &domain.RetiredIDError{ID: t.ID}
	}
	for _, existing := range m.tenants {
		if existing.Slug == t.Slug {
			return &domain.SlugConflictError{Slug: t.Slug}
		}
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantStore) GetTenant(_ context.Context, id string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get"]++
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockTenantStore) ListTenants(_ context.Context, f domain.ListFilter) ([]domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["list"]++
	out := make([]domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		if f.Active != nil && t.IsActive != *f.Active {
			continue
		}
		if f.Uninitialized && t.InitializedAt != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTenantStore) UpdateTenant(_ context.Context, t domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["update"]++
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.tenants[t.ID]; !ok {
		return domain.ErrTenantNotFound
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantStore) DeleteTenantCascade(_ context.Context, id string) error {
	m.mu.Lock()
	m.calls["delete"]++
	started, release := m.deleteStarted, m.deleteRelease
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		if m.removeOnDeleteErr {
			delete(m.tenants, id)
		}
		return m.deleteErr
	}
	if _, ok := m.tenants[id]; !ok {
		return domain.ErrTenantNotFound
	}
	delete(m.tenants, id)
	m.tombstones[id] = true
	return nil
}

func (m *mockTenantStore) MarkInitialized(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["mark_initialized"]++
	if m.markErr != nil {
		return m.markErr
	}
	t, ok := m.tenants[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.InitializedAt = &at
	m.tenants[id] = t
	return nil
}

// mockAdminStore is an in-memory AdminStore.
type mockAdminStore struct {
	mu     sync.Mutex
	admins map[string]domain.Administrator
	calls  map[string]int

	createErr error
	markErr   error
}

func newMockAdminStore() *mockAdminStore {
	return &mockAdminStore{
		admins: make(map[string]domain.Administrator),
		calls:  make(map[string]int),
	}
}

func (m *mockAdminStore) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockAdminStore) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockAdminStore) byEmail(tenantID, email string) (domain.Administrator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.TenantID == tenantID && a.Email == strings.ToLower(email) {
			return a, true
		}
	}
	return domain.Administrator{}, false
}

func (m *mockAdminStore) CreateAdmin(_ context.Context, a domain.Administrator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["create"]++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.admins {
		if existing.TenantID == a.TenantID && existing.Email == a.Email {
			return &domain.DuplicateAdminError{TenantID: a.TenantID, Email: a.Email}
		}
	}
	m.admins[a.ID] = a
	return nil
}

func (m *mockAdminStore) GetAdmin(_ context.Context, id string) (domain.Administrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get"]++
	a, ok := m.admins[id]
	if !ok {
		return domain.Administrator{}, domain.ErrAdminNotFound
	}
	return a, nil
}

func (m *mockAdminStore) ListAdmins(_ context.Context, tenantID string) ([]domain.Administrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["list"]++
	var out []domain.Administrator
	for _, a := range m.admins {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAdminStore) UpdateAdmin(_ context.Context, a domain.Administrator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["update"]++
	existing, ok := m.admins[a.ID]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.Email = existing.Email
	a.TenantID = existing.TenantID
	m.admins[a.ID] = a
	return nil
}

func (m *mockAdminStore) DeleteAdmin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["delete"]++
	if _, ok := m.admins[id]; !ok {
		return domain.ErrAdminNotFound
	}
	delete(m.admins, id)
	return nil
}

func (m *mockAdminStore) MarkInvited(_ context.Context, tenantID, email string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["mark_invited"]++
	if m.markErr != nil {
		return m.markErr
	}
	for id, a := range m.admins {
		if a.TenantID == tenantID && a.Email == email {
			a.LastInvitedAt = &at
			m.admins[id] = a
			return nil
		}
	}
	return domain.ErrAdminNotFound
}

// mockSetupStore records setup writes; each step can be made to fail.
type mockSetupStore struct {
	mu        sync.Mutex
	modules   map[string][]string
	settings  map[string]map[string]string
	bootstrap map[string]int

	modulesErr   error
	settingsErr  error
	bootstrapErr error
}

func newMockSetupStore() *mockSetupStore {
	return &mockSetupStore{
		modules:   make(map[string][]string),
		settings:  make(map[string]map[string]string),
		bootstrap: make(map[string]int),
	}
}

func (m *mockSetupStore) ActivateModules(_ context.Context, tenantID string, modules []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.modulesErr != nil {
		return m.modulesErr
	}
	m.modules[tenantID] = append(m.modules[tenantID], modules...)
	return nil
}

func (m *mockSetupStore) PutSettings(_ context.Context, tenantID string, settings map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settingsErr != nil {
		return m.settingsErr
	}
	if m.settings[tenantID] == nil {
		m.settings[tenantID] = make(map[string]string)
	}
	for k, v := range settings {
		m.settings[tenantID][k] = v
	}
	return nil
}

func (m *mockSetupStore) BootstrapSettings(_ context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bootstrapErr != nil {
		return m.bootstrapErr
	}
	m.bootstrap[tenantID]++
	return nil
}

// mockGateway records invitations.
type mockGateway struct {
	mu   sync.Mutex
	sent []domain.Invitation
	err  error
}

func (m *mockGateway) SendInvitation(_ context.Context, inv domain.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, inv)
	return nil
}

func (m *mockGateway) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// mockScheduler records scheduled initializations.
type mockScheduler struct {
	mu        sync.Mutex
	scheduled []string
	creators  []string
	err       error
}

func (m *mockScheduler) Schedule(_ context.Context, tenantID, creatorEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.scheduled = append(m.scheduled, tenantID)
	m.creators = append(m.creators, creatorEmail)
	return nil
}

// countingMetrics records the counters the services emit.
type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{counts: make(map[string]int)}
}

func (m *countingMetrics) inc(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
}

func (m *countingMetrics) get(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

func (m *countingMetrics) TenantCreated()                 { m.inc("tenant_created") }
func (m *countingMetrics) TenantDeleted()                 { m.inc("tenant_deleted") }
func (m *countingMetrics) TenantDeleteFailed(kind string) { m.inc("tenant_delete_failed:" + kind) }
func (m *countingMetrics) AdminCreated(mode string)       { m.inc("admin_created:" + mode) }
func (m *countingMetrics) InvitationBookkeepingFailed()   { m.inc("invitation_bookkeeping_failed") }
func (m *countingMetrics) InitializerStep(step string, ok bool) {
	if ok {
		m.inc("step_ok:" + step)
		return
	}
	m.inc("step_failed:" + step)
}
func (m *countingMetrics) InvitationSent(ok bool) {
	if ok {
		m.inc("invitation_sent")
		return
	}
	m.inc("invitation_failed")
}

var errBoom = errors.New("boom")
