package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"analytica-hq/meridian/pkg/underwriting"
	"analytica-hq/meridian/pkg/workflow"
)

// ModelVersion identifies the heuristic model.
const ModelVersion = "heuristic-1.0.0"

// heuristicConfidence is deliberately lower than a validated trained
// model would report.
const heuristicConfidence = 0.65

// Heuristic is the hand-weighted probability-of-default model. Safe for
// concurrent use.
type Heuristic struct {
	logger *slog.Logger
}

// NewHeuristic creates the heuristic scorer.
func NewHeuristic(logger *slog.Logger) *Heuristic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Heuristic{
		logger: logger.With("component", "scorer"),
	}
}

// stableOccupations are matched as substrings against the declared
// occupation, mirroring the intake pipeline's classification.
var stableOccupations = []string{"pegawai", "pns", "karyawan", "employee", "civil servant"}

// Score estimates the probability of default for the case. Invalid
// input is an error, never a silent guess.
func (h *Heuristic) Score(ctx context.Context, c *underwriting.Case) (*workflow.ScoreResult, error) {
	if c == nil {
		return nil, fmt.Errorf("case is required")
	}
	if c.Loan.Amount <= 0 || c.Loan.TermMonths <= 0 {
		return nil, fmt.Errorf("loan amount and term must be positive")
	}
	if c.Applicant.MonthlyIncome < 0 || math.IsNaN(c.Applicant.MonthlyIncome) {
		return nil, fmt.Errorf("monthly income %v is not scorable", c.Applicant.MonthlyIncome)
	}

	pd := 0.5

	// Ages 25 through 55 carry the lowest observed default rates.
	if c.Applicant.Age >= 25 && c.Applicant.Age <= 55 {
		pd -= 0.10
	} else {
		pd += 0.05
	}

	if c.Applicant.MonthlyIncome > 0 {
		monthlyPayment := c.Loan.Amount / float64(c.Loan.TermMonths)
		paymentToIncome := monthlyPayment / c.Applicant.MonthlyIncome
		switch {
		case paymentToIncome < 0.3:
			pd -= 0.15
		case paymentToIncome < 0.4:
			pd -= 0.05
		case paymentToIncome > 0.5:
			pd += 0.15
		}
	}

	bureauScore := 0
	delinquent := 0
	if c.Bureau != nil {
		bureauScore = c.Bureau.Score
		delinquent = c.Bureau.DelinquentAccounts
	}
	if bureauScore > 700 {
		pd -= 0.10
	} else if bureauScore < 500 {
		pd += 0.10
	}
	pd += float64(delinquent) * 0.10

	if stableOccupation(c.Applicant.Occupation) || c.Applicant.StableEmployment {
		pd -= 0.05
	}

	pd = math.Max(0, math.Min(1, pd))
	if math.IsNaN(pd) {
		return nil, fmt.Errorf("score computation produced NaN for case %s", c.ID)
	}

	h.logger.Debug("case scored",
		"case_id", c.ID,
		"probability_of_default", pd,
		"model_version", ModelVersion,
	)

	return &workflow.ScoreResult{
		ProbabilityOfDefault: pd,
		Confidence:           heuristicConfidence,
		ModelVersion:         ModelVersion,
	}, nil
}

func stableOccupation(occupation string) bool {
	occ := strings.ToLower(occupation)
	for _, s := range stableOccupations {
		if strings.Contains(occ, s) {
			return true
		}
	}
	return false
}
