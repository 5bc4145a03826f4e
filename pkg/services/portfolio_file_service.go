package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"pcaf-advisory-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// PortfolioAnalysis is the result of ingesting a loan book file.
type PortfolioAnalysis struct {
	FileName              string                   `json:"fileName"`
	TotalRows             int                      `json:"totalRows"`
	ParsedLoans           int                      `json:"parsedLoans"`
	SkippedRows           int                      `json:"skippedRows"`
	ScoreDistribution     map[string]int           `json:"scoreDistribution"`
	LoansNeedingUpgrade   int                      `json:"loansNeedingUpgrade"`
	Portfolio             *models.PortfolioContext `json:"portfolio"`
	ParseWarnings         []string                 `json:"parseWarnings,omitempty"`
	ComplianceExplanation string                   `json:"complianceExplanation"`
}

// PortfolioFileService parses uploaded loan book files (.xlsx or .csv) into
// a portfolio context for the RAG services.
type PortfolioFileService struct{}

// NewPortfolioFileService creates a new PortfolioFileService.
func NewPortfolioFileService() *PortfolioFileService {
	return &PortfolioFileService{}
}

type loanRecord struct {
	Balance float64
	Score   float64
}

// AnalyzeLoanBook reads a loan book file and derives the exposure-weighted
// data quality score and compliance posture. The header must contain an
// outstanding-balance column and a data-quality-score column; a loan
// identifier column is optional.
func (s *PortfolioFileService) AnalyzeLoanBook(reader io.Reader, fileName string) (*PortfolioAnalysis, error) {
	rows, err := s.readRows(reader, fileName)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	header := rows[0]
	dataRows := rows[1:]

	balanceIdx := findColumn(header, "outstanding_balance", "outstanding balance", "balance", "exposure", "loan_amount", "loan amount", "amount")
	scoreIdx := findColumn(header, "data_quality_score", "data quality score", "dqs", "pcaf_score", "pcaf score", "quality_score", "score", "pcaf_option", "option")
	emissionsIdx := findColumn(header, "financed_emissions", "financed emissions", "emissions", "co2e", "tco2e")

	var missing []string
	if balanceIdx == -1 {
		missing = append(missing, "outstanding balance")
	}
	if scoreIdx == -1 {
		missing = append(missing, "data quality score")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required columns not found: %s (header: %v)", strings.Join(missing, ", "), header)
	}

	var loans []loanRecord
	var totalEmissions float64
	var warnings []string
	for rowIdx, row := range dataRows {
		if len(row) <= balanceIdx || len(row) <= scoreIdx {
			if len(warnings) < 5 {
				warnings = append(warnings, fmt.Sprintf("row %d: not enough columns", rowIdx+2))
			}
			continue
		}
		balance, balErr := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[balanceIdx]), ",", ""), 64)
		score, scoreErr := strconv.ParseFloat(strings.TrimSpace(row[scoreIdx]), 64)
		if balErr != nil || scoreErr != nil || balance <= 0 || score < 1 || score > 5 {
			if len(warnings) < 5 {
				warnings = append(warnings, fmt.Sprintf("row %d: unparseable balance or score outside 1-5", rowIdx+2))
			}
			continue
		}
		loans = append(loans, loanRecord{Balance: balance, Score: score})
		if emissionsIdx != -1 && len(row) > emissionsIdx {
			if emissions, err := strconv.ParseFloat(strings.TrimSpace(row[emissionsIdx]), 64); err == nil && emissions > 0 {
				totalEmissions += emissions
			}
		}
	}

	if len(loans) == 0 {
		return nil, fmt.Errorf("no valid loan rows found in %s", fileName)
	}

	var totalExposure, weightedScoreSum float64
	distribution := map[string]int{
		"option_1": 0, "option_2": 0, "option_3": 0, "option_4": 0, "option_5": 0,
	}
	needingUpgrade := 0
	var tier5to4, tier4to3, tier3to2 int
	for _, loan := range loans {
		totalExposure += loan.Balance
		weightedScoreSum += loan.Balance * loan.Score

		bucket := int(loan.Score + 0.5)
		if bucket < 1 {
			bucket = 1
		}
		if bucket > 5 {
			bucket = 5
		}
		distribution[fmt.Sprintf("option_%d", bucket)]++

		if loan.Score > 3 {
			needingUpgrade++
		}
		switch {
		case loan.Score >= 4.5:
			tier5to4++
		case loan.Score >= 3.5:
			tier4to3++
		case loan.Score > 3.0:
			tier3to2++
		}
	}

	wdqs := weightedScoreSum / totalExposure
	compliant := wdqs <= complianceThreshold

	status := "needs_improvement"
	explanation := fmt.Sprintf("Exposure-weighted data quality score %.2f exceeds the 3.0 regulatory threshold.", wdqs)
	if compliant {
		status = "compliant"
		explanation = fmt.Sprintf("Exposure-weighted data quality score %.2f meets the 3.0 regulatory threshold.", wdqs)
	}

	emissionIntensity := 0.0
	if totalEmissions > 0 && totalExposure > 0 {
		// tCO2e per $M outstanding
		emissionIntensity = totalEmissions / (totalExposure / 1_000_000)
	}

	improvements := map[string][]string{
		"option_5_to_4": placeholderLoanIDs(tier5to4),
		"option_4_to_3": placeholderLoanIDs(tier4to3),
		"option_3_to_2": placeholderLoanIDs(tier3to2),
	}

	portfolio := &models.PortfolioContext{
		TotalLoans:        len(loans),
		TotalExposure:     totalExposure,
		TotalEmissions:    totalEmissions,
		EmissionIntensity: emissionIntensity,
		DataQuality: &models.DataQuality{
			AverageScore:            wdqs,
			Distribution:            distribution,
			LoansNeedingImprovement: needingUpgrade,
			ComplianceStatus:        status,
		},
		Improvements: improvements,
	}

	log.Printf("[PORTFOLIO] Analyzed %s: %d loans, WDQS %.2f, %d needing upgrade", fileName, len(loans), wdqs, needingUpgrade)

	return &PortfolioAnalysis{
		FileName:              fileName,
		TotalRows:             len(dataRows),
		ParsedLoans:           len(loans),
		SkippedRows:           len(dataRows) - len(loans),
		ScoreDistribution:     distribution,
		LoansNeedingUpgrade:   needingUpgrade,
		Portfolio:             portfolio,
		ParseWarnings:         warnings,
		ComplianceExplanation: explanation,
	}, nil
}

func (s *PortfolioFileService) readRows(reader io.Reader, fileName string) ([][]string, error) {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		f, err := excelize.OpenReader(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		return rows, nil
	case strings.HasSuffix(lower, ".csv"):
		r := csv.NewReader(reader)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV file: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file format: upload .xlsx or .csv")
	}
}

// findColumn returns the index of the first header cell matching any of the
// candidate names, -1 when none match.
func findColumn(header []string, candidates ...string) int {
	for i, cell := range header {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, candidate := range candidates {
			if normalized == candidate {
				return i
			}
		}
	}
	return -1
}

// placeholderLoanIDs sizes an improvement tier without carrying loan-level
// identifiers out of the file.
func placeholderLoanIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("loan-%d", i+1)
	}
	return ids
}
