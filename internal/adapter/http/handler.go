package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/tenantdesk/internal/app"
	"github.com/neomorfeo/tenantdesk/internal/domain"
)

// Services bundles the application services exposed over HTTP.
type Services struct {
	Tenants     *app.TenantService
	Admins      *app.AdminService
	Invitations *app.InvitationDispatcher
	Initializer *app.Initializer
}

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID                    string  `json:"id" doc:"Unique identifier"`
	Name                  string  `json:"name" doc:"Display name"`
	Slug                  string  `json:"slug" doc:"URL-friendly identifier derived from the name"`
	ContactEmail          string  `json:"contact_email,omitempty"`
	Phone                 string  `json:"phone,omitempty"`
	Street                string  `json:"street,omitempty"`
	PostalCode            string  `json:"postal_code,omitempty"`
	City                  string  `json:"city,omitempty"`
	Country               string  `json:"country,omitempty"`
	BillingEmail          string  `json:"billing_email,omitempty"`
	Subscription          string  `json:"subscription" doc:"Subscription plan"`
	Currency              string  `json:"currency" doc:"ISO 4217 currency code"`
	BillingCycle          string  `json:"billing_cycle" doc:"monthly or yearly"`
	IsActive              bool    `json:"is_active"`
	SubscriptionStartedAt *string `json:"subscription_started_at,omitempty" doc:"Set while the tenant is active (RFC 3339)"`
	InitializedAt         *string `json:"initialized_at,omitempty" doc:"Set once initialization completed (RFC 3339)"`
	AdminCount            int     `json:"admin_count" doc:"Number of administrators"`
	CreatedAt             string  `json:"created_at" doc:"Creation timestamp (RFC 3339)"`
	UpdatedAt             string  `json:"updated_at" doc:"Last update timestamp (RFC 3339)"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatNullTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:                    t.ID,
		Name:                  t.Name,
		Slug:                  t.Slug,
		ContactEmail:          t.ContactEmail,
		Phone:                 t.Phone,
		Street:                t.Street,
		PostalCode:            t.PostalCode,
		City:                  t.City,
		Country:               t.Country,
		BillingEmail:          t.BillingEmail,
		Subscription:          t.Subscription,
		Currency:              t.Currency,
		BillingCycle:          t.BillingCycle,
		IsActive:              t.IsActive,
		SubscriptionStartedAt: formatNullTime(t.SubscriptionStartedAt),
		InitializedAt:         formatNullTime(t.InitializedAt),
		AdminCount:            t.AdminCount,
		CreatedAt:             formatTime(t.CreatedAt),
		UpdatedAt:             formatTime(t.UpdatedAt),
	}
}

// --- Create Tenant ---

type CreateTenantInput struct {
	Body struct {
		Name         string `json:"name" maxLength:"255" doc:"Display name"`
		ContactEmail string `json:"contact_email,omitempty"`
		Phone        string `json:"phone,omitempty"`
		Street       string `json:"street,omitempty"`
		PostalCode   string `json:"postal_code,omitempty"`
		City         string `json:"city,omitempty"`
		Country      string `json:"country,omitempty"`
		BillingEmail string `json:"billing_email,omitempty"`
		Subscription string `json:"subscription,omitempty" doc:"Subscription plan, defaults to the configured plan"`
		Currency     string `json:"currency,omitempty"`
		BillingCycle string `json:"billing_cycle,omitempty"`
		CreatorEmail string `json:"creator_email,omitempty" doc:"Linked as the tenant owner during initialization"`
	}
}

type TenantOutput struct {
	Body TenantResponse
}

// --- Get Tenant ---

type TenantIDInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

// --- List Tenants ---

type ListTenantsInput struct {
	Status        string `query:"status" required:"false" enum:"all,active,inactive" default:"all" doc:"Filter by active flag"`
	Uninitialized bool   `query:"uninitialized" required:"false" doc:"Only tenants whose initialization never completed"`
	Limit         int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset        int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListTenantsOutput struct {
	Body []TenantResponse
}

// --- Update Tenant ---

type UpdateTenantInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body struct {
		Name         *string `json:"name,omitempty"`
		ContactEmail *string `json:"contact_email,omitempty"`
		Phone        *string `json:"phone,omitempty"`
		Street       *string `json:"street,omitempty"`
		PostalCode   *string `json:"postal_code,omitempty"`
		City         *string `json:"city,omitempty"`
		Country      *string `json:"country,omitempty"`
		BillingEmail *string `json:"billing_email,omitempty"`
		Subscription *string `json:"subscription,omitempty"`
		Currency     *string `json:"currency,omitempty"`
		BillingCycle *string `json:"billing_cycle,omitempty"`
	}
}

// --- Initialize ---

type StepOutcomeResponse struct {
	Step       string `json:"step"`
	OK         bool   `json:"ok"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type InitializeTenantInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body struct {
		CreatorEmail string `json:"creator_email,omitempty" doc:"Administrator to link as owner"`
	}
}

type InitializeTenantOutput struct {
	Body []StepOutcomeResponse
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerTenants(api, svc)
	registerAdmins(api, svc)
	registerInvitations(api, svc)
}

func registerTenants(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-tenant",
		Method:        http.MethodPost,
		Path:          "/api/v1/tenants",
		Summary:       "Create a new tenant",
		Description:   "Initialization runs in the background and never fails the request.",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTenantInput) (*TenantOutput, error) {
		b := input.Body
		tenant, err := svc.Tenants.Create(ctx, domain.TenantProfile{
			Name:         b.Name,
			ContactEmail: b.ContactEmail,
			Phone:        b.Phone,
			Street:       b.Street,
			PostalCode:   b.PostalCode,
			City:         b.City,
			Country:      b.Country,
			BillingEmail: b.BillingEmail,
			Subscription: b.Subscription,
			Currency:     b.Currency,
			BillingCycle: b.BillingCycle,
			CreatorEmail: b.CreatorEmail,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Get a tenant by ID",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantIDInput) (*TenantOutput, error) {
		tenant, err := svc.Tenants.Get(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		filter := domain.ListFilter{
			Uninitialized: input.Uninitialized,
			Limit:         input.Limit,
			Offset:        input.Offset,
		}
		switch input.Status {
		case "active", "inactive":
			active := input.Status == "active"
			filter.Active = &active
		}

		tenants, err := svc.Tenants.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			resp[i] = toTenantResponse(t)
		}
		return &ListTenantsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Edit tenant settings or billing",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *UpdateTenantInput) (*TenantOutput, error) {
		b := input.Body
		tenant, err := svc.Tenants.Update(ctx, input.ID, domain.TenantPatch{
			Name:         b.Name,
			ContactEmail: b.ContactEmail,
			Phone:        b.Phone,
			Street:       b.Street,
			PostalCode:   b.PostalCode,
			City:         b.City,
			Country:      b.Country,
			BillingEmail: b.BillingEmail,
			Subscription: b.Subscription,
			Currency:     b.Currency,
			BillingCycle: b.BillingCycle,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	for _, op := range []struct {
		id, path, summary string
		active            bool
	}{
		{"activate-tenant", "/api/v1/tenants/{id}/activate", "Activate a tenant", true},
		{"deactivate-tenant", "/api/v1/tenants/{id}/deactivate", "Deactivate a tenant", false},
	} {
		huma.Register(api, huma.Operation{
			OperationID: op.id,
			Method:      http.MethodPost,
			Path:        op.path,
			Summary:     op.summary,
			Tags:        []string{"Tenants"},
		}, func(ctx context.Context, input *TenantIDInput) (*TenantOutput, error) {
			tenant, err := svc.Tenants.SetActive(ctx, input.ID, op.active)
			if err != nil {
				return nil, toHumaError(err)
			}
			return &TenantOutput{Body: toTenantResponse(tenant)}, nil
		})
	}

	huma.Register(api, huma.Operation{
		OperationID: "delete-tenant",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Delete a tenant and everything it owns",
		Description: "Irreversible. The tenant's id is never reused.",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantIDInput) (*struct{}, error) {
		if err := svc.Tenants.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "initialize-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{id}/initialize",
		Summary:     "Re-run tenant initialization",
		Description: "Runs every step synchronously and reports each outcome. Safe to repeat.",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *InitializeTenantInput) (*InitializeTenantOutput, error) {
		if _, err := svc.Tenants.Get(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}

		outcomes := svc.Initializer.Initialize(ctx, input.ID, input.Body.CreatorEmail)
		resp := make([]StepOutcomeResponse, len(outcomes))
		for i, o := range outcomes {
			resp[i] = StepOutcomeResponse{
				Step:       o.Step,
				OK:         o.OK(),
				Skipped:    o.Skipped,
				DurationMS: o.Duration.Milliseconds(),
			}
			if o.Err != nil {
				resp[i].Error = o.Err.Error()
			}
		}
		return &InitializeTenantOutput{Body: resp}, nil
	})
}
