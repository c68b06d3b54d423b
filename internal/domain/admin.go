package domain

import (
	"strings"
	"time"
)

// AdminStatus represents the lifecycle state of an administrator.
type AdminStatus string

const (
	AdminStatusCreated           AdminStatus = "created"
	AdminStatusPendingInvitation AdminStatus = "pending_invitation"
	AdminStatusActive            AdminStatus = "active"
)

// AdminEvent is reported by the external registration flow and advances an administrator's status.
type AdminEvent string

const (
	EventRegistrationStarted   AdminEvent = "registration_started"
	EventRegistrationCompleted AdminEvent = "registration_completed"
)

// Transition defines a valid state change: an event moves an administrator from Src to Dst.
type Transition struct {
	Event AdminEvent
	Src   AdminStatus
	Dst   AdminStatus
}

// AdminTransitions defines all valid state changes in the administrator lifecycle.
// Direct creation yields AdminStatusActive without passing through this table.
var AdminTransitions = []Transition{
	{Event: EventRegistrationStarted, Src: AdminStatusCreated, Dst: AdminStatusPendingInvitation},
	{Event: EventRegistrationCompleted, Src: AdminStatusPendingInvitation, Dst: AdminStatusActive},
}

// Roles carried by administrators.
const (
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// CreateMode selects how an administrator account is provisioned.
type CreateMode string

const (
	// ModeInvite creates the record and leaves email delivery to a separate step.
	ModeInvite CreateMode = "invite"
	// ModeDirect creates an account that can authenticate immediately.
	ModeDirect CreateMode = "direct"
)

// Administrator is a user account scoped to exactly one tenant.
type Administrator struct {
	ID            string
	TenantID      string
	Email         string
	Salutation    string
	FirstName     string
	LastName      string
	Phone         string
	Position      string
	Role          string
	Status        AdminStatus
	PasswordHash  string
	LastInvitedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName joins salutation and names, skipping blanks.
func (a Administrator) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Salutation, a.FirstName, a.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// AdminProfile is the input for creating an administrator.
type AdminProfile struct {
	Email      string
	Salutation string
	FirstName  string
	LastName   string
	Phone      string
	Position   string
	Role       string
}

// Validate checks the required fields shared by both creation modes.
func (p AdminProfile) Validate() error {
	if err := ValidateEmail("email", strings.TrimSpace(p.Email)); err != nil {
		return err
	}
	if err := requireField("first_name", p.FirstName); err != nil {
		return err
	}
	if err := requireField("last_name", p.LastName); err != nil {
		return err
	}
	return requireField("salutation", p.Salutation)
}

// NewAdministrator builds a record for the given tenant with the given initial status.
func NewAdministrator(id, tenantID string, p AdminProfile, status AdminStatus) Administrator {
	now := time.Now().UTC()
	role := strings.TrimSpace(p.Role)
	if role == "" {
		role = RoleAdmin
	}
	return Administrator{
		ID:         id,
		TenantID:   tenantID,
		Email:      strings.ToLower(strings.TrimSpace(p.Email)),
		Salutation: strings.TrimSpace(p.Salutation),
		FirstName:  strings.TrimSpace(p.FirstName),
		LastName:   strings.TrimSpace(p.LastName),
		Phone:      strings.TrimSpace(p.Phone),
		Position:   strings.TrimSpace(p.Position),
		Role:       role,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AdminPatch is an edit request. Email and TenantID are accepted only so a
// caller attempting to change them can be rejected.
type AdminPatch struct {
	Email      *string
	TenantID   *string
	Salutation *string
	FirstName  *string
	LastName   *string
	Phone      *string
	Position   *string
}

// ApplyTo validates the patch against the current record and returns the edited copy.
func (p AdminPatch) ApplyTo(a Administrator) (Administrator, error) {
	if p.Email != nil && !strings.EqualFold(strings.TrimSpace(*p.Email), a.Email) {
		return Administrator{}, &ValidationError{Field: "email", Reason: "cannot be changed"}
	}
	if p.TenantID != nil && *p.TenantID != a.TenantID {
		return Administrator{}, &ValidationError{Field: "tenant_id", Reason: "cannot be changed"}
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"salutation", p.Salutation},
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
	} {
		if f.value != nil {
			if err := requireField(f.name, *f.value); err != nil {
				return Administrator{}, err
			}
		}
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&a.Salutation, p.Salutation)
	set(&a.FirstName, p.FirstName)
	set(&a.LastName, p.LastName)
	set(&a.Phone, p.Phone)
	set(&a.Position, p.Position)
	a.UpdatedAt = time.Now().UTC()
	return a, nil
}
