package services

import (
	"strings"
	"testing"

	"pcaf-advisory-api/pkg/models"
)

func compliantPortfolio() *models.PortfolioContext {
	return &models.PortfolioContext{
		TotalLoans: 2847,
		DataQuality: &models.DataQuality{
			AverageScore: 2.8,
		},
	}
}

func TestResolvePlaceholdersPortfolioMetrics(t *testing.T) {
	enhancer := NewContextEnhancer()
	pc := compliantPortfolio()

	result := enhancer.ResolvePlaceholders("WDQS is {portfolio_wdqs} across {loan_count} loans.", pc)

	if !strings.Contains(result, "2.8") {
		t.Errorf("Expected WDQS '2.8' in result: %s", result)
	}
	if !strings.Contains(result, "2,847") {
		t.Errorf("Expected comma-formatted loan count '2,847' in result: %s", result)
	}
}

func TestResolvePlaceholdersComplianceStatus(t *testing.T) {
	enhancer := NewContextEnhancer()

	compliant := enhancer.ResolvePlaceholders("Status: {compliance_status}", compliantPortfolio())
	if !strings.Contains(compliant, "COMPLIANT") {
		t.Errorf("Expected COMPLIANT for WDQS 2.8: %s", compliant)
	}

	nonCompliant := enhancer.ResolvePlaceholders("Status: {compliance_status}", &models.PortfolioContext{
		TotalLoans:  1200,
		DataQuality: &models.DataQuality{AverageScore: 3.2},
	})
	if !strings.Contains(nonCompliant, "NEEDS IMPROVEMENT") {
		t.Errorf("Expected NEEDS IMPROVEMENT for WDQS 3.2: %s", nonCompliant)
	}

	// Exactly at the threshold counts as compliant.
	atThreshold := enhancer.ResolvePlaceholders("Status: {compliance_status}", &models.PortfolioContext{
		TotalLoans:  100,
		DataQuality: &models.DataQuality{AverageScore: 3.0},
	})
	if !strings.Contains(atThreshold, "COMPLIANT") || strings.Contains(atThreshold, "NEEDS") {
		t.Errorf("Expected COMPLIANT at exactly 3.0: %s", atThreshold)
	}
}

func TestResolvePlaceholdersUnknownTokenLeftLiteral(t *testing.T) {
	enhancer := NewContextEnhancer()

	result := enhancer.ResolvePlaceholders("Value: {no_such_token}", compliantPortfolio())
	if !strings.Contains(result, "{no_such_token}") {
		t.Errorf("Expected unknown token to stay literal: %s", result)
	}
}

func TestResolvePlaceholdersNilContext(t *testing.T) {
	enhancer := NewContextEnhancer()

	text := "WDQS is {portfolio_wdqs}."
	if result := enhancer.ResolvePlaceholders(text, nil); result != text {
		t.Errorf("Expected text unchanged without portfolio context, got: %s", result)
	}
}

func TestEnhanceAppendsRoleInsights(t *testing.T) {
	enhancer := NewContextEnhancer()
	pc := compliantPortfolio()

	result := enhancer.Enhance("Base answer.", pc, models.RoleRiskManager)
	if !strings.Contains(result, "Risk Assessment") {
		t.Errorf("Expected risk manager insights block: %s", result)
	}

	result = enhancer.Enhance("Base answer.", pc, models.RoleExecutive)
	if !strings.Contains(result, "Executive Summary") {
		t.Errorf("Expected executive insights block: %s", result)
	}

	result = enhancer.Enhance("Base answer.", pc, models.RoleComplianceOfficer)
	if !strings.Contains(result, "Compliance Status") {
		t.Errorf("Expected compliance insights block: %s", result)
	}

	result = enhancer.Enhance("Base answer.", pc, models.RoleLoanOfficer)
	if !strings.Contains(result, "Operational Focus") {
		t.Errorf("Expected loan officer insights block: %s", result)
	}
}

func TestEnhanceNilContextReturnsRawAnswer(t *testing.T) {
	enhancer := NewContextEnhancer()

	answer := "Raw answer with {portfolio_wdqs}."
	if result := enhancer.Enhance(answer, nil, models.RoleExecutive); result != answer {
		t.Errorf("Expected raw answer without context, got: %s", result)
	}
}

func TestEnhanceExposureEstimate(t *testing.T) {
	enhancer := NewContextEnhancer()
	// No explicit exposure: estimated as loans x 35000.
	pc := &models.PortfolioContext{
		TotalLoans:  100,
		DataQuality: &models.DataQuality{AverageScore: 2.5},
	}

	result := enhancer.ResolvePlaceholders("Exposure: {total_exposure}", pc)
	if !strings.Contains(result, "3,500,000") {
		t.Errorf("Expected estimated exposure 3,500,000: %s", result)
	}
}

func TestFormatInt(t *testing.T) {
	testCases := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{2847, "2,847"},
		{1234567, "1,234,567"},
		{-2847, "-2,847"},
	}

	for _, tc := range testCases {
		if result := formatInt(tc.input); result != tc.expected {
			t.Errorf("formatInt(%d) = %s, expected %s", tc.input, result, tc.expected)
		}
	}
}

func TestPercentileRanking(t *testing.T) {
	testCases := []struct {
		wdqs     float64
		expected string
	}{
		{2.2, "25th (Industry Leader)"},
		{2.8, "50th (Peer Median)"},
		{3.1, "75th (Needs Improvement)"},
		{3.8, "90th (Supervisory Concern)"},
	}

	for _, tc := range testCases {
		if result := percentileRanking(tc.wdqs); result != tc.expected {
			t.Errorf("percentileRanking(%.1f) = %s, expected %s", tc.wdqs, result, tc.expected)
		}
	}
}

func TestTierCountsPreferExplicitImprovements(t *testing.T) {
	enhancer := NewContextEnhancer()
	pc := &models.PortfolioContext{
		TotalLoans:  1000,
		DataQuality: &models.DataQuality{AverageScore: 3.1},
		Improvements: map[string][]string{
			"option_5_to_4": {"l1", "l2", "l3"},
		},
	}

	// Explicit tier membership wins over the share-based estimate.
	result := enhancer.ResolvePlaceholders("Tier 1: {tier1_count}", pc)
	if !strings.Contains(result, "Tier 1: 3") {
		t.Errorf("Expected explicit tier count 3: %s", result)
	}

	// No explicit membership for tier 2: falls back to the 25%% share.
	result = enhancer.ResolvePlaceholders("Tier 2: {tier2_count}", pc)
	if !strings.Contains(result, "250") {
		t.Errorf("Expected share-based tier 2 count 250: %s", result)
	}
}
