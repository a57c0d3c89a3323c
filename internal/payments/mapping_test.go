package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"recipeclub/internal/types"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     types.SubscriptionStatus
	}{
		{"active", "active", types.SubStatusActive},
		{"paid counts as active", "paid", types.SubStatusActive},
		{"uppercase active", "ACTIVE", types.SubStatusActive},
		{"cancelled", "cancelled", types.SubStatusCancelled},
		{"overdue", "overdue", types.SubStatusOverdue},
		{"unknown falls back to inactive", "trialing", types.SubStatusInactive},
		{"empty falls back to inactive", "", types.SubStatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStatus(tt.provider))
		})
	}
}

func TestMapPlan(t *testing.T) {
	tests := []struct {
		name    string
		product string
		want    types.PlanType
	}{
		{"english monthly", "Recipe Club Monthly", types.PlanMonthly},
		{"portuguese monthly", "Clube de Receitas - Plano Mensal", types.PlanMonthly},
		{"english yearly", "Recipe Club Yearly", types.PlanYearly},
		{"portuguese yearly", "Plano Anual", types.PlanYearly},
		{"case insensitive", "PLANO MENSAL", types.PlanMonthly},
		{"basic plan has no mapping", "Plano Básico", types.PlanNone},
		{"unrecognized product", "Ebook de Receitas", types.PlanNone},
		{"empty product", "", types.PlanNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapPlan(tt.product))
		})
	}
}
