package domain

import (
	"regexp"
	"strings"
	"time"
)

// Billing cycles accepted for a tenant.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// Tenant is a customer organization, the top-level isolation boundary for data.
type Tenant struct {
	ID           string
	Name         string
	Slug         string
	ContactEmail string
	Phone        string
	Street       string
	PostalCode   string
	City         string
	Country      string
	BillingEmail string
	Subscription string
	Currency     string
	BillingCycle string
	IsActive     bool

	// SubscriptionStartedAt is stamped whenever the tenant becomes active
	// and cleared when it is deactivated.
	SubscriptionStartedAt *time.Time

	// InitializedAt is set once every initializer step has succeeded.
	// A nil value is a valid, recoverable state.
	InitializedAt *time.Time

	// AdminCount is derived by the store and never written back.
	AdminCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantDefaults holds the values applied to optional profile fields.
type TenantDefaults struct {
	Subscription string
	Currency     string
	BillingCycle string
}

// TenantProfile is the input for creating a tenant. Only Name is required.
type TenantProfile struct {
	Name         string
	ContactEmail string
	Phone        string
	Street       string
	PostalCode   string
	City         string
	Country      string
	BillingEmail string
	Subscription string
	Currency     string
	BillingCycle string

	// CreatorEmail, when set, is linked as the tenant's first administrator
	// during initialization.
	CreatorEmail string
}

// Validate checks the profile without touching any store.
func (p TenantProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if err := validateOptionalEmail("contact_email", p.ContactEmail); err != nil {
		return err
	}
	if err := validateOptionalEmail("billing_email", p.BillingEmail); err != nil {
		return err
	}
	if err := validateOptionalEmail("creator_email", p.CreatorEmail); err != nil {
		return err
	}
	if err := validateBillingCycle(p.BillingCycle); err != nil {
		return err
	}
	return validateCurrency(p.Currency)
}

// NewTenant creates an active tenant from a validated profile, filling in defaults.
func NewTenant(id string, p TenantProfile, defaults TenantDefaults) Tenant {
	now := time.Now().UTC()
	t := Tenant{
		ID:                    id,
		Name:                  strings.TrimSpace(p.Name),
		Slug:                  Slugify(p.Name),
		ContactEmail:          strings.TrimSpace(p.ContactEmail),
		Phone:                 p.Phone,
		Street:                p.Street,
		PostalCode:            p.PostalCode,
		City:                  p.City,
		Country:               p.Country,
		BillingEmail:          strings.TrimSpace(p.BillingEmail),
		Subscription:          firstNonEmpty(p.Subscription, defaults.Subscription),
		Currency:              strings.ToUpper(firstNonEmpty(p.Currency, defaults.Currency)),
		BillingCycle:          firstNonEmpty(p.BillingCycle, defaults.BillingCycle, BillingMonthly),
		IsActive:              true,
		SubscriptionStartedAt: &now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if t.Slug == "" {
		t.Slug = fallbackSlug(id)
	}
	return t
}

// SetActive flips the active flag. Activation restamps the subscription
// start, deactivation clears it.
func (t *Tenant) SetActive(active bool, now time.Time) {
	t.IsActive = active
	if active {
		ts := now.UTC()
		t.SubscriptionStartedAt = &ts
	} else {
		t.SubscriptionStartedAt = nil
	}
}

// TenantPatch carries a settings or billing edit. Nil fields are left unchanged.
type TenantPatch struct {
	Name         *string
	ContactEmail *string
	Phone        *string
	Street       *string
	PostalCode   *string
	City         *string
	Country      *string
	BillingEmail *string
	Subscription *string
	Currency     *string
	BillingCycle *string
}

// Validate checks the patch without touching any store.
func (p TenantPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.ContactEmail != nil {
		if err := validateOptionalEmail("contact_email", *p.ContactEmail); err != nil {
			return err
		}
	}
	if p.BillingEmail != nil {
		if err := validateOptionalEmail("billing_email", *p.BillingEmail); err != nil {
			return err
		}
	}
	if p.Subscription != nil && strings.TrimSpace(*p.Subscription) == "" {
		return &ValidationError{Field: "subscription", Reason: "must not be empty"}
	}
	if p.BillingCycle != nil {
		if *p.BillingCycle == "" {
			return &ValidationError{Field: "billing_cycle", Reason: "must not be empty"}
		}
		if err := validateBillingCycle(*p.BillingCycle); err != nil {
			return err
		}
	}
	if p.Currency != nil {
		if *p.Currency == "" {
			return &ValidationError{Field: "currency", Reason: "must not be empty"}
		}
		if err := validateCurrency(*p.Currency); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the set fields onto the tenant. The slug is stable across renames.
func (p TenantPatch) Apply(t *Tenant) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&t.Name, p.Name)
	set(&t.ContactEmail, p.ContactEmail)
	set(&t.Phone, p.Phone)
	set(&t.Street, p.Street)
	set(&t.PostalCode, p.PostalCode)
	set(&t.City, p.City)
	set(&t.Country, p.Country)
	set(&t.BillingEmail, p.BillingEmail)
	set(&t.Subscription, p.Subscription)
	set(&t.BillingCycle, p.BillingCycle)
	if p.Currency != nil {
		t.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	umlauts     = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
)

// Slugify derives a URL-friendly identifier from a display name.
func Slugify(name string) string {
	s := umlauts.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// fallbackSlug names tenants whose display name has no ASCII letter or digit.
func fallbackSlug(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "tenant-" + id
}

func validateBillingCycle(cycle string) error {
	switch cycle {
	case "", BillingMonthly, BillingYearly:
		return nil
	}
	return &ValidationError{Field: "billing_cycle", Reason: "must be monthly or yearly"}
}

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

func validateCurrency(code string) error {
	if code == "" || currencyPattern.MatchString(code) {
		return nil
	}
	return &ValidationError{Field: "currency", Reason: "must be a three-letter code"}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
