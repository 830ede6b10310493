package reasoner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"analytica-hq/meridian/pkg/underwriting"
)

// Advisor is the built-in qualitative reasoner. It collects notable
// observations about the case and turns them into a recommendation with
// a confidence proportional to how one-sided the observations are.
type Advisor struct {
	logger *slog.Logger
}

// NewAdvisor creates the built-in reasoner.
func NewAdvisor(logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{
		logger: logger.With("component", "reasoner"),
	}
}

// Analyze produces the advisory opinion for the case.
func (a *Advisor) Analyze(ctx context.Context, c *underwriting.Case) (underwriting.ReasonerOpinion, error) {
	if c == nil {
		return underwriting.ReasonerOpinion{}, fmt.Errorf("case is required")
	}

	var positives, negatives []string

	if c.Applicant.StableEmployment {
		positives = append(positives, "applicant holds stable employment")
	} else {
		negatives = append(negatives, "employment is not classified as stable")
	}

	if c.Applicant.MonthlyIncome > 0 && c.Loan.TermMonths > 0 {
		monthlyPayment := c.Loan.Amount / float64(c.Loan.TermMonths)
		ratio := monthlyPayment / c.Applicant.MonthlyIncome
		switch {
		case ratio < 0.25:
			positives = append(positives, "requested installment is comfortably within income")
		case ratio > 0.45:
			negatives = append(negatives, "requested installment consumes a large share of income")
		}
	} else {
		negatives = append(negatives, "no verifiable income against the requested installment")
	}

	if bu := c.Bureau; bu != nil {
		band := underwriting.RiskCategoryForScore(bu.Score)
		switch band {
		case underwriting.RiskVeryLow, underwriting.RiskLow:
			positives = append(positives, fmt.Sprintf("bureau history is clean (%s risk band)", band))
		case underwriting.RiskHigh:
			negatives = append(negatives, fmt.Sprintf("bureau score sits in the %s risk band", band))
		}
		if bu.DelinquentAccounts > 0 {
			negatives = append(negatives, fmt.Sprintf("%d delinquent account(s) on record", bu.DelinquentAccounts))
		}
		if bu.InquiriesLast6M >= 4 {
			negatives = append(negatives, "recent credit-seeking behaviour (frequent inquiries)")
		}
	} else {
		negatives = append(negatives, "no bureau history available")
	}

	if c.CollateralValue > 0 && c.CollateralValue >= c.Loan.Amount {
		positives = append(positives, "facility is fully covered by collateral")
	}

	opinion := underwriting.ReasonerOpinion{
		FreeText: narrative(positives, negatives),
	}
	switch {
	case len(negatives) == 0:
		opinion.Recommendation = underwriting.RecommendApprove
	case len(positives) == 0:
		opinion.Recommendation = underwriting.RecommendReject
	default:
		opinion.Recommendation = underwriting.RecommendReview
	}
	opinion.Confidence = confidence(len(positives), len(negatives))

	a.logger.Debug("qualitative opinion produced",
		"case_id", c.ID,
		"recommendation", opinion.Recommendation,
		"confidence", opinion.Confidence,
	)
	return opinion, nil
}

// confidence grows with how one-sided the observations are, bounded to
// [0.5, 0.9] because a rule-of-thumb opinion is never certain.
func confidence(positives, negatives int) float64 {
	total := positives + negatives
	if total == 0 {
		return 0.5
	}
	major := positives
	if negatives > major {
		major = negatives
	}
	c := 0.5 + 0.4*float64(major)/float64(total)
	if c > 0.9 {
		c = 0.9
	}
	return c
}

func narrative(positives, negatives []string) string {
	var b strings.Builder
	if len(positives) > 0 {
		b.WriteString("Strengths: ")
		b.WriteString(strings.Join(positives, "; "))
		b.WriteString(".")
	}
	if len(negatives) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Concerns: ")
		b.WriteString(strings.Join(negatives, "; "))
		b.WriteString(".")
	}
	return b.String()
}
