package services

import (
	"strings"
	"testing"

	"pcaf-advisory-api/pkg/models"
)

func TestCustomizeExecutive(t *testing.T) {
	customizer := NewRoleCustomizer()
	entry := models.QuestionEntry{
		ID:       "q1",
		Category: "strategic_advisory",
		Question: "test",
		Answer:   "test",
		BankingContext: map[string]bool{
			"strategicPlanning": true,
		},
	}

	result := customizer.Customize(entry, 0.9, models.RoleExecutive)

	if result.ExecutiveSummary == "" {
		t.Fatal("Expected executive summary for executive role")
	}
	if !strings.Contains(result.ExecutiveSummary, "strong strategic alignment") {
		t.Errorf("Expected strong alignment wording for score 0.9: %s", result.ExecutiveSummary)
	}
	if !strings.Contains(result.ExecutiveSummary, "board-level discussion") {
		t.Errorf("Expected board-level audience for strategicPlanning context: %s", result.ExecutiveSummary)
	}
	if len(result.ActionItems) == 0 {
		t.Error("Expected executive action items")
	}
}

func TestCustomizeExecutiveAlignmentBands(t *testing.T) {
	customizer := NewRoleCustomizer()
	entry := models.QuestionEntry{ID: "q1", Category: "methodology", Question: "t", Answer: "t"}

	moderate := customizer.Customize(entry, 0.7, models.RoleExecutive)
	if !strings.Contains(moderate.ExecutiveSummary, "moderate strategic impact") {
		t.Errorf("Expected moderate wording for score 0.7: %s", moderate.ExecutiveSummary)
	}
	if !strings.Contains(moderate.ExecutiveSummary, "management review") {
		t.Errorf("Expected management review audience without strategicPlanning: %s", moderate.ExecutiveSummary)
	}

	limited := customizer.Customize(entry, 0.4, models.RoleExecutive)
	if !strings.Contains(limited.ExecutiveSummary, "limited strategic relevance") {
		t.Errorf("Expected limited wording for score 0.4: %s", limited.ExecutiveSummary)
	}
}

func TestCustomizeNonExecutiveRoles(t *testing.T) {
	customizer := NewRoleCustomizer()
	entry := models.QuestionEntry{ID: "q1", Category: "compliance", Question: "t", Answer: "t"}

	testCases := []struct {
		role     models.UserRole
		fragment string
	}{
		{models.RoleRiskManager, "risk assessment"},
		{models.RoleComplianceOfficer, "regulatory requirements"},
		{models.RoleLoanOfficer, "process improvements"},
	}

	for _, tc := range testCases {
		result := customizer.Customize(entry, 0.8, tc.role)
		if result.ExecutiveSummary != "" {
			t.Errorf("Expected no executive summary for role %s", tc.role)
		}
		if len(result.ActionItems) == 0 {
			t.Fatalf("Expected action items for role %s", tc.role)
		}
		found := false
		for _, item := range result.ActionItems {
			if strings.Contains(strings.ToLower(item), tc.fragment) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected %q in action items for role %s: %v", tc.fragment, tc.role, result.ActionItems)
		}
	}
}
