package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"pcaf-advisory-api/pkg/models"
)

// WDQS at or below this value meets the PCAF regulatory expectation.
const complianceThreshold = 3.0

// Improvement tier shares of the portfolio, used when the context does not
// carry explicit tier membership.
const (
	tier1Share = 0.15
	tier2Share = 0.25
	tier3Share = 0.60
)

var placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// PlaceholderResolver computes the replacement value for one template token.
type PlaceholderResolver func(pc *models.PortfolioContext) string

// ContextEnhancer substitutes {placeholder} tokens in curated answers with
// live portfolio metrics and appends role-tailored narrative insights.
type ContextEnhancer struct {
	resolvers map[string]PlaceholderResolver
}

// NewContextEnhancer builds the enhancer with the full resolver table.
func NewContextEnhancer() *ContextEnhancer {
	e := &ContextEnhancer{resolvers: make(map[string]PlaceholderResolver)}
	e.registerResolvers()
	return e
}

// Enhance resolves placeholders in answerText against the portfolio snapshot
// and appends the role-specific insight block. Without a portfolio context
// the raw answer is returned unchanged.
func (e *ContextEnhancer) Enhance(answerText string, pc *models.PortfolioContext, role models.UserRole) string {
	if pc == nil {
		return answerText
	}

	enhanced := e.ResolvePlaceholders(answerText, pc)
	if insights := e.portfolioInsights(pc, role); insights != "" {
		enhanced += "\n\n" + insights
	}
	return enhanced
}

// ResolvePlaceholders replaces every {token} that has a registered resolver.
// Tokens without a resolver are left literal in the output rather than being
// dropped, so authoring mistakes stay visible in QA.
func (e *ContextEnhancer) ResolvePlaceholders(text string, pc *models.PortfolioContext) string {
	if pc == nil || !strings.Contains(text, "{") {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := strings.Trim(token, "{}")
		resolver, ok := e.resolvers[name]
		if !ok {
			return token
		}
		return resolver(pc)
	})
}

func (e *ContextEnhancer) registerResolvers() {
	wdqs := func(pc *models.PortfolioContext) string {
		if pc.DataQuality == nil {
			return "3.2"
		}
		return strconv.FormatFloat(pc.DataQuality.AverageScore, 'f', 1, 64)
	}
	exposure := func(pc *models.PortfolioContext) float64 {
		if pc.TotalExposure > 0 {
			return pc.TotalExposure
		}
		// Estimate when the snapshot only carries a loan count.
		return float64(pc.TotalLoans) * 35000
	}
	tierCount := func(pc *models.PortfolioContext, tier string, share float64) string {
		if loans, ok := pc.Improvements[tier]; ok && len(loans) > 0 {
			return formatInt(len(loans))
		}
		return formatInt(int(math.Floor(float64(pc.TotalLoans) * share)))
	}

	// Portfolio metrics.
	e.resolvers["portfolio_wdqs"] = wdqs
	e.resolvers["current_wdqs"] = wdqs
	e.resolvers["wdqs"] = wdqs
	e.resolvers["loan_count"] = func(pc *models.PortfolioContext) string {
		return formatInt(pc.TotalLoans)
	}
	e.resolvers["totalLoans"] = func(pc *models.PortfolioContext) string {
		return formatInt(pc.TotalLoans)
	}
	e.resolvers["total_exposure"] = func(pc *models.PortfolioContext) string {
		return formatFloat(exposure(pc))
	}
	e.resolvers["totalEmissions"] = func(pc *models.PortfolioContext) string {
		return formatFloat(pc.TotalEmissions)
	}
	e.resolvers["emissionIntensity"] = func(pc *models.PortfolioContext) string {
		return strconv.FormatFloat(pc.EmissionIntensity, 'f', 1, 64)
	}

	// Compliance status.
	e.resolvers["compliance_status"] = func(pc *models.PortfolioContext) string {
		if isCompliant(pc) {
			return "COMPLIANT"
		}
		return "NEEDS IMPROVEMENT"
	}
	e.resolvers["complianceStatus"] = func(pc *models.PortfolioContext) string {
		if pc.DataQuality != nil && pc.DataQuality.ComplianceStatus != "" {
			return pc.DataQuality.ComplianceStatus
		}
		if isCompliant(pc) {
			return "compliant"
		}
		return "needs_improvement"
	}
	e.resolvers["compliance_status_icon"] = func(pc *models.PortfolioContext) string {
		if isCompliant(pc) {
			return "✅"
		}
		return "⚠️"
	}
	e.resolvers["compliance_explanation"] = func(pc *models.PortfolioContext) string {
		if isCompliant(pc) {
			return "Portfolio meets PCAF regulatory threshold of ≤3.0"
		}
		excess := averageScore(pc) - complianceThreshold
		return fmt.Sprintf("Portfolio exceeds threshold by %.1f points", excess)
	}

	// Improvement tiers.
	e.resolvers["tier1_count"] = func(pc *models.PortfolioContext) string {
		return tierCount(pc, "option_5_to_4", tier1Share)
	}
	e.resolvers["tier2_count"] = func(pc *models.PortfolioContext) string {
		return tierCount(pc, "option_4_to_3", tier2Share)
	}
	e.resolvers["tier3_count"] = func(pc *models.PortfolioContext) string {
		return tierCount(pc, "option_3_to_2", tier3Share)
	}
	e.resolvers["tier1_exposure"] = func(pc *models.PortfolioContext) string {
		return formatFloat(exposure(pc) * 0.35)
	}
	e.resolvers["tier2_exposure"] = func(pc *models.PortfolioContext) string {
		return formatFloat(exposure(pc) * 0.40)
	}
	e.resolvers["tier3_exposure"] = func(pc *models.PortfolioContext) string {
		return formatFloat(exposure(pc) * 0.25)
	}

	// Financial impact.
	e.resolvers["capital_impact"] = func(pc *models.PortfolioContext) string {
		return formatFloat(exposure(pc) * 0.02)
	}
	e.resolvers["capital_savings"] = func(pc *models.PortfolioContext) string {
		return formatFloat(exposure(pc) * 0.005)
	}
	e.resolvers["rwa_amount"] = func(pc *models.PortfolioContext) string {
		return formatFloat(exposure(pc) * 0.75)
	}
	e.resolvers["cost_per_loan"] = constant("$15")
	e.resolvers["wdqs_improvement"] = constant("0.3 points")
	e.resolvers["cecl_coverage"] = constant("1.25")
	e.resolvers["climate_adjustment"] = constant("5")

	// Targets and benchmarks.
	e.resolvers["target_wdqs"] = constant("2.8")
	e.resolvers["percentile_ranking"] = func(pc *models.PortfolioContext) string {
		return percentileRanking(averageScore(pc))
	}

	// Banking context.
	e.resolvers["avg_credit_rating"] = constant("BBB+")
	e.resolvers["vintage_breakdown"] = constant("65% post-2020 originations")
	e.resolvers["geo_concentration"] = constant("45")
	e.resolvers["concentration"] = constant("12")
	e.resolvers["vehicle_type_concentration"] = constant("60% passenger cars, 25% SUVs, 15% trucks")
}

func constant(value string) PlaceholderResolver {
	return func(*models.PortfolioContext) string { return value }
}

func averageScore(pc *models.PortfolioContext) float64 {
	if pc.DataQuality == nil {
		return 3.2
	}
	return pc.DataQuality.AverageScore
}

// isCompliant derives the compliance marker from the WDQS threshold. An
// explicit complianceStatus on the snapshot is intentionally ignored here:
// the marker must stay consistent with the reported score.
func isCompliant(pc *models.PortfolioContext) bool {
	return averageScore(pc) <= complianceThreshold
}

func percentileRanking(wdqs float64) string {
	switch {
	case wdqs <= 2.4:
		return "25th (Industry Leader)"
	case wdqs <= 2.8:
		return "50th (Peer Median)"
	case wdqs <= 3.2:
		return "75th (Needs Improvement)"
	default:
		return "90th (Supervisory Concern)"
	}
}

// portfolioInsights builds the role-specific narrative block from the
// portfolio snapshot.
func (e *ContextEnhancer) portfolioInsights(pc *models.PortfolioContext, role models.UserRole) string {
	dq := pc.DataQuality
	if dq == nil {
		dq = &models.DataQuality{AverageScore: 3.2}
	}

	var b strings.Builder
	b.WriteString("**🎯 Your Portfolio-Specific Insights:**\n\n")

	switch role {
	case models.RoleExecutive:
		b.WriteString("**Executive Summary:**\n")
		b.WriteString(fmt.Sprintf("• Strategic Position: %s\n", strategicPosition(dq.AverageScore)))
		if dq.ComplianceStatus == "compliant" || (dq.ComplianceStatus == "" && dq.AverageScore <= complianceThreshold) {
			b.WriteString("• Regulatory Status: Full Compliance\n")
		} else {
			b.WriteString("• Regulatory Status: Action Required\n")
		}
		tier2 := len(pc.Improvements["option_4_to_3"])
		priority := "Medium"
		if tier2 > 100 {
			priority = "High"
		}
		b.WriteString(fmt.Sprintf("• Investment Priority: %s (%d loans)\n", priority, tier2))

	case models.RoleRiskManager:
		b.WriteString("**Risk Assessment:**\n")
		b.WriteString(fmt.Sprintf("• Portfolio Risk: %s\n", portfolioRisk(dq.AverageScore)))
		pct := 0.0
		if pc.TotalLoans > 0 {
			pct = float64(dq.LoansNeedingImprovement) / float64(pc.TotalLoans) * 100
		}
		b.WriteString(fmt.Sprintf("• Concentration Risk: %.1f%% of portfolio needs improvement\n", pct))
		if dq.AverageScore > complianceThreshold {
			b.WriteString("• Regulatory Risk: Supervisory attention likely\n")
		} else {
			b.WriteString("• Regulatory Risk: Meets expectations\n")
		}

	case models.RoleComplianceOfficer:
		b.WriteString("**Compliance Status:**\n")
		b.WriteString(fmt.Sprintf("• Current WDQS: %.1f (Threshold: ≤3.0)\n", dq.AverageScore))
		if dq.AverageScore <= complianceThreshold {
			b.WriteString("• Examination Readiness: ✅ Ready\n")
			b.WriteString("• Documentation Status: Adequate\n")
		} else {
			b.WriteString("• Examination Readiness: ⚠️ Needs improvement plan\n")
			b.WriteString("• Documentation Status: Enhancement required\n")
		}

	default: // loan_officer
		b.WriteString("**Operational Focus:**\n")
		b.WriteString(fmt.Sprintf("• Data Collection Priority: %d loans need vehicle type\n", len(pc.Improvements["option_5_to_4"])))
		b.WriteString(fmt.Sprintf("• VIN Collection Target: %d loans need specifications\n", len(pc.Improvements["option_4_to_3"])))
		b.WriteString(fmt.Sprintf("• Customer Outreach: %d customers/week for mileage data\n", len(pc.Improvements["option_3_to_2"])/4))
	}

	return strings.TrimRight(b.String(), "\n")
}

func strategicPosition(wdqs float64) string {
	switch {
	case wdqs <= 2.5:
		return "Market Leader"
	case wdqs <= 3.0:
		return "Competitive Parity"
	default:
		return "Competitive Risk"
	}
}

func portfolioRisk(wdqs float64) string {
	switch {
	case wdqs > 3.5:
		return "High"
	case wdqs > 3.0:
		return "Medium"
	default:
		return "Low"
	}
}

// formatInt renders an integer with thousands separators, e.g. 2847 -> "2,847".
func formatInt(n int) string {
	negative := n < 0
	if negative {
		n = -n
	}
	digits := strconv.Itoa(n)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// formatFloat renders a monetary amount with thousands separators, dropping
// the fraction like the dashboard display does.
func formatFloat(f float64) string {
	return formatInt(int(math.Round(f)))
}
