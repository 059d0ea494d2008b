package models

import "time"

// SubscriptionPlan is the organization's billing tier.
type SubscriptionPlan string

const (
	PlanFree    SubscriptionPlan = "Free"
	PlanBasic   SubscriptionPlan = "Basic"
	PlanPremium SubscriptionPlan = "Premium"
)

// ValidPlan reports whether s is a known subscription plan.
func ValidPlan(s string) bool {
	switch SubscriptionPlan(s) {
	case PlanFree, PlanBasic, PlanPremium:
		return true
	}
	return false
}

// Organization is a tenant. OwnerID is nil while creation is in flight inside
// its transaction; readers must treat a nil owner as unowned, never as user 1.
type Organization struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	OwnerID          *int64           `json:"owner_id"`
	SubscriptionPlan SubscriptionPlan `json:"subscription_plan"`
	MaxUsers         int              `json:"max_users"`
	MaxStorageGB     float64          `json:"max_storage_gb"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// OrganizationStats summarizes tenants for the admin-master dashboard.
type OrganizationStats struct {
	Total   int `json:"total"`
	Free    int `json:"free"`
	Basic   int `json:"basic"`
	Premium int `json:"premium"`
	Recent  int `json:"recent"` // created within the last 30 days
}
