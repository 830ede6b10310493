package engine

import (
	"analytica-hq/meridian/pkg/rules"
	"analytica-hq/meridian/pkg/underwriting"
)

// Featurize flattens a case into the feature map rule predicates evaluate
// against. Bureau-derived features are present only when the snapshot has
// been fetched; a catalogue rule referencing an absent bureau feature
// fails safe rather than evaluating against a zero.
func Featurize(c *underwriting.Case) rules.FeatureMap {
	existingDebt := 0.0

	f := rules.FeatureMap{
		rules.FeatureApplicantAge:     float64(c.Applicant.Age),
		rules.FeatureMonthlyIncome:    c.Applicant.MonthlyIncome,
		rules.FeatureStableEmployment: rules.Bool(c.Applicant.StableEmployment),
		rules.FeatureLoanAmount:       c.Loan.Amount,
		rules.FeatureLoanTerm:         float64(c.Loan.TermMonths),
		rules.FeatureCollateralValue:  c.CollateralValue,
	}

	if c.Bureau != nil {
		f[rules.FeatureBureauScore] = float64(c.Bureau.Score)
		f[rules.FeatureDelinquents] = float64(c.Bureau.DelinquentAccounts)
		f[rules.FeatureInquiries6M] = float64(c.Bureau.InquiriesLast6M)
		f[rules.FeatureTotalDebt] = c.Bureau.TotalDebt
		existingDebt = c.Bureau.TotalDebt
	}

	f[rules.FeatureDTI] = DTI(c.Applicant.MonthlyIncome, c.Loan.Amount, c.Loan.TermMonths, existingDebt)
	f[rules.FeatureDSCR] = DSCR(c.Applicant.MonthlyIncome, c.Financials.OperatingIncome, c.Loan.Amount, c.Loan.TermMonths, existingDebt)
	f[rules.FeatureLTV] = LTV(c.Loan.Amount, c.CollateralValue)

	return f
}
