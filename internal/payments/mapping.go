package payments

import (
	"strings"

	"recipeclub/internal/types"
)

// MapStatus normalizes a provider status string into the internal
// subscription status. Matching is case-insensitive; both "active" and
// "paid" map to active, and anything unrecognized maps to inactive.
func MapStatus(status string) types.SubscriptionStatus {
	switch strings.ToLower(status) {
	case "active", "paid":
		return types.SubStatusActive
	case "cancelled":
		return types.SubStatusCancelled
	case "overdue":
		return types.SubStatusOverdue
	default:
		return types.SubStatusInactive
	}
}

// MapPlan normalizes a provider product name into the internal plan type via
// case-insensitive substring match. The provider names products in both
// English and Portuguese ("Plano Mensal", "Plano Anual"), so both spellings
// are recognized. Product names matching neither map to PlanNone.
//
// Substring matching is inherently ambiguous for renamed or adversarial
// product strings; the provider contract owns product naming.
func MapPlan(productName string) types.PlanType {
	name := strings.ToLower(productName)
	switch {
	case strings.Contains(name, "monthly"), strings.Contains(name, "mensal"):
		return types.PlanMonthly
	case strings.Contains(name, "yearly"), strings.Contains(name, "anual"):
		return types.PlanYearly
	default:
		return types.PlanNone
	}
}
