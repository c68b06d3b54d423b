package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var defaults = domain.TenantDefaults{Subscription: "trial", Currency: "EUR", BillingCycle: "monthly"}

func TestNewTenant(t *testing.T) {
	before := time.Now().UTC()
	tenant := domain.NewTenant("id-1", domain.TenantProfile{Name: " Acme GmbH "}, defaults)
	after := time.Now().UTC()

	if tenant.ID != "id-1" {
		t.Errorf("ID = %q, want %q", tenant.ID, "id-1")
	}
	if tenant.Name != "Acme GmbH" {
		t.Errorf("Name = %q, want %q", tenant.Name, "Acme GmbH")
	}
	if tenant.Slug != "acme-gmbh" {
		t.Errorf("Slug = %q, want %q", tenant.Slug, "acme-gmbh")
	}
	if !tenant.IsActive {
		t.Error("new tenant should be active")
	}
	if tenant.Subscription != "trial" {
		t.Errorf("Subscription = %q, want %q", tenant.Subscription, "trial")
	}
	if tenant.Currency != "EUR" {
		t.Errorf("Currency = %q, want %q", tenant.Currency, "EUR")
	}
	if tenant.BillingCycle != domain.BillingMonthly {
		t.Errorf("BillingCycle = %q, want %q", tenant.BillingCycle, domain.BillingMonthly)
	}
	if tenant.SubscriptionStartedAt == nil {
		t.Fatal("SubscriptionStartedAt should be stamped")
	}
	if tenant.CreatedAt.Before(before) || tenant.CreatedAt.After(after) {
		t.Errorf("CreatedAt = %v, want between %v and %v", tenant.CreatedAt, before, after)
	}
	if tenant.InitializedAt != nil {
		t.Error("InitializedAt should be nil on a new tenant")
	}
}

func TestNewTenant_NonLatinNameGetsFallbackSlug(t *testing.T) {
	tenant := domain.NewTenant("6f1c2a8e-4b7d-4c3a-9e2f-1a2b3c4d5e6f", domain.TenantProfile{Name: "Москва Строй"}, defaults)

	if tenant.Name != "Москва Строй" {
		t.Errorf("Name = %q, want %q", tenant.Name, "Москва Строй")
	}
	if tenant.Slug != "tenant-6f1c2a8e" {
		t.Errorf("Slug = %q, want %q", tenant.Slug, "tenant-6f1c2a8e")
	}
}

func TestNewTenant_ExplicitValuesWin(t *testing.T) {
	tenant := domain.NewTenant("id-1", domain.TenantProfile{
		Name:         "Acme",
		Subscription: "pro",
		Currency:     "chf",
		BillingCycle: domain.BillingYearly,
	}, defaults)

	if tenant.Subscription != "pro" {
		t.Errorf("Subscription = %q, want %q", tenant.Subscription, "pro")
	}
	if tenant.Currency != "CHF" {
		t.Errorf("Currency = %q, want %q", tenant.Currency, "CHF")
	}
	if tenant.BillingCycle != domain.BillingYearly {
		t.Errorf("BillingCycle = %q, want %q", tenant.BillingCycle, domain.BillingYearly)
	}
}

func TestTenantProfile_Validate(t *testing.T) {
	cases := []struct {
		name    string
		profile domain.TenantProfile
		field   string
	}{
		{"missing name", domain.TenantProfile{Name: "  "}, "name"},
		{"bad contact email", domain.TenantProfile{Name: "A", ContactEmail: "nope"}, "contact_email"},
		{"bad billing email", domain.TenantProfile{Name: "A", BillingEmail: "a@b"}, "billing_email"},
		{"bad creator email", domain.TenantProfile{Name: "A", CreatorEmail: "x y@z.de"}, "creator_email"},
		{"bad cycle", domain.TenantProfile{Name: "A", BillingCycle: "weekly"}, "billing_cycle"},
		{"bad currency", domain.TenantProfile{Name: "A", Currency: "EURO"}, "currency"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.profile.Validate()
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Errorf("Field = %q, want %q", vErr.Field, tc.field)
			}
		})
	}

	if err := (domain.TenantProfile{Name: "Acme", ContactEmail: "info@acme.de"}).Validate(); err != nil {
		t.Errorf("valid profile rejected: %v", err)
	}
}

func TestTenant_SetActive(t *testing.T) {
	tenant := domain.NewTenant("id-1", domain.TenantProfile{Name: "Acme"}, defaults)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tenant.SetActive(false, now)
	if tenant.IsActive {
		t.Error("tenant should be inactive")
	}
	if tenant.SubscriptionStartedAt != nil {
		t.Error("SubscriptionStartedAt should be cleared on deactivation")
	}

	tenant.SetActive(true, now)
	if !tenant.IsActive {
		t.Error("tenant should be active")
	}
	if tenant.SubscriptionStartedAt == nil || !tenant.SubscriptionStartedAt.Equal(now) {
		t.Errorf("SubscriptionStartedAt = %v, want %v", tenant.SubscriptionStartedAt, now)
	}
}

func TestTenantPatch_ApplyKeepsSlug(t *testing.T) {
	tenant := domain.NewTenant("id-1", domain.TenantProfile{Name: "Acme"}, defaults)
	name := "Acme Holding"
	currency := "usd"
	patch := domain.TenantPatch{Name: &name, Currency: &currency}

	if err := patch.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	patch.Apply(&tenant)

	if tenant.Name != "Acme Holding" {
		t.Errorf("Name = %q, want %q", tenant.Name, "Acme Holding")
	}
	if tenant.Slug != "acme" {
		t.Errorf("Slug = %q, want %q", tenant.Slug, "acme")
	}
	if tenant.Currency != "USD" {
		t.Errorf("Currency = %q, want %q", tenant.Currency, "USD")
	}
}

func TestTenantPatch_RejectsEmptyName(t *testing.T) {
	empty := ""
	err := domain.TenantPatch{Name: &empty}.Validate()
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme GmbH":          "acme-gmbh",
		"  Müller & Söhne  ": "mueller-soehne",
		"Straße 42 -- Büro!": "strasse-42-buero",
		"already-a-slug":     "already-a-slug",
	}
	for in, want := range cases {
		if got := domain.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidID(t *testing.T) {
	if !domain.ValidID("3f2b8a9e-1c4d-4e5f-8a6b-7c8d9e0f1a2b") {
		t.Error("uuid should be valid")
	}
	for _, bad := range []string{"", "t-1", "nonexistent", "3f2b8a9e1c4d4e5f8a6b7c8d9e0f1a2b"} {
		if domain.ValidID(bad) {
			t.Errorf("ValidID(%q) = true, want false", bad)
		}
	}
}
