package services

import (
	"fmt"

	"pcaf-advisory-api/pkg/models"
)

// RoleCustomization is the role-specific decoration of a matched answer.
type RoleCustomization struct {
	ExecutiveSummary string
	ActionItems      []string
}

// RoleCustomizer derives executive summaries and role-specific action lists.
// The action lists are role-constant on purpose: coarse personalization, not
// per-answer generation.
type RoleCustomizer struct{}

// NewRoleCustomizer creates a new RoleCustomizer.
func NewRoleCustomizer() *RoleCustomizer {
	return &RoleCustomizer{}
}

// Customize produces the role decoration for a matched entry. Only the
// executive role gets an executive summary.
func (rc *RoleCustomizer) Customize(entry models.QuestionEntry, score float64, role models.UserRole) RoleCustomization {
	switch role {
	case models.RoleExecutive:
		return RoleCustomization{
			ExecutiveSummary: rc.executiveSummary(entry, score),
			ActionItems:      executiveActionItems,
		}
	case models.RoleRiskManager:
		return RoleCustomization{ActionItems: riskActionItems}
	case models.RoleComplianceOfficer:
		return RoleCustomization{ActionItems: complianceActionItems}
	default:
		return RoleCustomization{ActionItems: operationalActionItems}
	}
}

func (rc *RoleCustomizer) executiveSummary(entry models.QuestionEntry, score float64) string {
	alignment := "limited strategic relevance"
	if score > 0.8 {
		alignment = "strong strategic alignment"
	} else if score > 0.6 {
		alignment = "moderate strategic impact"
	}

	audience := "management review"
	if entry.BankingContext["strategicPlanning"] {
		audience = "board-level discussion"
	}

	return fmt.Sprintf("**Executive Summary:** %s analysis indicates %s with current business objectives. Recommended for %s.",
		entry.Category, alignment, audience)
}

var executiveActionItems = []string{
	"Review strategic implications with senior leadership team",
	"Assess resource allocation requirements and ROI projections",
	"Evaluate competitive positioning and market opportunities",
	"Consider regulatory relationship and supervisory expectations",
}

var riskActionItems = []string{
	"Conduct risk assessment of current portfolio exposure",
	"Update risk appetite statements and tolerance levels",
	"Enhance monitoring and reporting frameworks",
	"Validate stress testing and scenario analysis capabilities",
}

var complianceActionItems = []string{
	"Review regulatory requirements and examination expectations",
	"Update policies and procedures documentation",
	"Assess training needs for staff and management",
	"Prepare examination readiness materials and evidence",
}

var operationalActionItems = []string{
	"Implement process improvements in daily operations",
	"Update system configurations and data collection procedures",
	"Train front-line staff on new requirements",
	"Monitor performance metrics and quality indicators",
}
