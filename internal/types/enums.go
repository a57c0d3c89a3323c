package types

// SubscriptionStatus is the internal entitlement state of a subscriber.
type SubscriptionStatus string

const (
	SubStatusActive    SubscriptionStatus = "active"
	SubStatusInactive  SubscriptionStatus = "inactive"
	SubStatusCancelled SubscriptionStatus = "cancelled"
	SubStatusOverdue   SubscriptionStatus = "overdue"
	SubStatusAdmin     SubscriptionStatus = "admin"
)

// PlanType identifies the billing plan attached to a subscription profile.
type PlanType string

const (
	PlanNone    PlanType = "none"
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
	PlanAdmin   PlanType = "admin"
)

// Environment values accepted for APP_ENV.
const (
	EnvLocal   = "local"
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)
