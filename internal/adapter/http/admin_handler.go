package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// AdminResponse is the API representation of an administrator. The password
// hash is never exposed.
type AdminResponse struct {
	ID            string   `json:"id"`
	TenantID      string   `json:"tenant_id"`
	Email         string   `json:"email"`
	Salutation    string   `json:"salutation"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	DisplayName   string   `json:"display_name"`
	Phone         string   `json:"phone,omitempty"`
	Position      string   `json:"position,omitempty"`
	Role          string   `json:"role"`
	Status        string   `json:"status" doc:"created, pending_invitation or active"`
	NextEvents    []string `json:"next_events" doc:"Registration events accepted in the current status"`
	LastInvitedAt *string  `json:"last_invited_at,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func toAdminResponse(a domain.Administrator, next []domain.AdminEvent) AdminResponse {
	events := make([]string, len(next))
	for i, e := range next {
		events[i] = string(e)
	}
	return AdminResponse{
		ID:            a.ID,
		TenantID:      a.TenantID,
		Email:         a.Email,
		Salutation:    a.Salutation,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		DisplayName:   a.DisplayName(),
		Phone:         a.Phone,
		Position:      a.Position,
		Role:          a.Role,
		Status:        string(a.Status),
		NextEvents:    events,
		LastInvitedAt: formatNullTime(a.LastInvitedAt),
		CreatedAt:     formatTime(a.CreatedAt),
		UpdatedAt:     formatTime(a.UpdatedAt),
	}
}

type AdminOutput struct {
	Body AdminResponse
}

type AdminIDInput struct {
	TenantID string `path:"id" doc:"Tenant ID"`
	AdminID  string `path:"adminId" doc:"Administrator ID"`
}

type CreateAdminInput struct {
	TenantID string `path:"id" doc:"Tenant ID"`
	Body     struct {
		Email      string `json:"email"`
		Salutation string `json:"salutation"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Phone      string `json:"phone,omitempty"`
		Position   string `json:"position,omitempty"`
		Role       string `json:"role,omitempty" doc:"admin or owner"`
		Mode       string `json:"mode,omitempty" enum:"invite,direct" default:"invite" doc:"invite leaves delivery to a separate call, direct activates immediately"`
		Password   string `json:"password,omitempty" writeOnly:"true" doc:"Required for direct mode"`
	}
}

type ListAdminsInput struct {
	TenantID string `path:"id" doc:"Tenant ID"`
}

type ListAdminsOutput struct {
	Body []AdminResponse
}

type UpdateAdminInput struct {
	TenantID string `path:"id" doc:"Tenant ID"`
	AdminID  string `path:"adminId" doc:"Administrator ID"`
	Body     struct {
		Email      *string `json:"email,omitempty" doc:"Immutable, rejected when different"`
		TenantID   *string `json:"tenant_id,omitempty" doc:"Immutable, rejected when different"`
		Salutation *string `json:"salutation,omitempty"`
		FirstName  *string `json:"first_name,omitempty"`
		LastName   *string `json:"last_name,omitempty"`
		Phone      *string `json:"phone,omitempty"`
		Position   *string `json:"position,omitempty"`
	}
}

type AdminEventInput struct {
	TenantID string `path:"id" doc:"Tenant ID"`
	AdminID  string `path:"adminId" doc:"Administrator ID"`
	Body     struct {
		Event string `json:"event" enum:"registration_started,registration_completed" doc:"Registration event reported by the identity flow"`
	}
}

// --- Invitations ---

type SendInvitationInput struct {
	TenantID string `path:"id" doc:"Tenant ID"`
	Body     struct {
		Email string `json:"email" doc:"Recipient address"`
	}
}

type InvitationResponse struct {
	Email          string `json:"email"`
	TenantID       string `json:"tenant_id"`
	ActivationLink string `json:"activation_link"`
	SentAt         string `json:"sent_at"`
	Warning        string `json:"warning,omitempty" doc:"Set when the email was sent but could not be recorded"`
}

type SendInvitationOutput struct {
	Body InvitationResponse
}

func registerAdmins(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-admin",
		Method:        http.MethodPost,
		Path:          "/api/v1/tenants/{id}/admins",
		Summary:       "Create an administrator",
		Tags:          []string{"Administrators"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateAdminInput) (*AdminOutput, error) {
		b := input.Body
		admin, err := svc.Admins.Create(ctx, input.TenantID, domain.AdminProfile{
			Email:      b.Email,
			Salutation: b.Salutation,
			FirstName:  b.FirstName,
			LastName:   b.LastName,
			Phone:      b.Phone,
			Position:   b.Position,
			Role:       b.Role,
		}, domain.CreateMode(b.Mode), b.Password)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AdminOutput{Body: toAdminResponse(admin, svc.Admins.NextEvents(admin))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-admins",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}/admins",
		Summary:     "List a tenant's administrators",
		Tags:        []string{"Administrators"},
	}, func(ctx context.Context, input *ListAdminsInput) (*ListAdminsOutput, error) {
		admins, err := svc.Admins.List(ctx, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]AdminResponse, len(admins))
		for i, a := range admins {
			resp[i] = toAdminResponse(a, svc.Admins.NextEvents(a))
		}
		return &ListAdminsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-admin",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}/admins/{adminId}",
		Summary:     "Get an administrator",
		Tags:        []string{"Administrators"},
	}, func(ctx context.Context, input *AdminIDInput) (*AdminOutput, error) {
		admin, err := svc.Admins.Get(ctx, input.AdminID, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AdminOutput{Body: toAdminResponse(admin, svc.Admins.NextEvents(admin))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-admin",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tenants/{id}/admins/{adminId}",
		Summary:     "Edit an administrator's profile",
		Tags:        []string{"Administrators"},
	}, func(ctx context.Context, input *UpdateAdminInput) (*AdminOutput, error) {
		b := input.Body
		admin, err := svc.Admins.Update(ctx, input.AdminID, input.TenantID, domain.AdminPatch{
			Email:      b.Email,
			TenantID:   b.TenantID,
			Salutation: b.Salutation,
			FirstName:  b.FirstName,
			LastName:   b.LastName,
			Phone:      b.Phone,
			Position:   b.Position,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AdminOutput{Body: toAdminResponse(admin, svc.Admins.NextEvents(admin))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-admin",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tenants/{id}/admins/{adminId}",
		Summary:     "Delete an administrator",
		Tags:        []string{"Administrators"},
	}, func(ctx context.Context, input *AdminIDInput) (*struct{}, error) {
		if err := svc.Admins.Delete(ctx, input.AdminID, input.TenantID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-event",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{id}/admins/{adminId}/events",
		Summary:     "Report a registration event",
		Tags:        []string{"Administrators"},
	}, func(ctx context.Context, input *AdminEventInput) (*AdminOutput, error) {
		admin, err := svc.Admins.Transition(ctx, input.AdminID, input.TenantID, domain.AdminEvent(input.Body.Event))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AdminOutput{Body: toAdminResponse(admin, svc.Admins.NextEvents(admin))}, nil
	})
}

func registerInvitations(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "send-invitation",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{id}/invitations",
		Summary:     "Send an invitation email",
		Description: "Delivery is not idempotent: every call sends a new email.",
		Tags:        []string{"Administrators"},
	}, func(ctx context.Context, input *SendInvitationInput) (*SendInvitationOutput, error) {
		email := strings.ToLower(strings.TrimSpace(input.Body.Email))
		if err := domain.ValidateEmail("email", email); err != nil {
			return nil, toHumaError(err)
		}

		tenant, err := svc.Tenants.Get(ctx, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}

		result, err := svc.Invitations.Send(ctx, email, tenant.ID, tenant.Name)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SendInvitationOutput{Body: InvitationResponse{
			Email:          result.Email,
			TenantID:       result.TenantID,
			ActivationLink: result.ActivationLink,
			SentAt:         formatTime(result.SentAt),
			Warning:        result.Warning,
		}}, nil
	})
}
