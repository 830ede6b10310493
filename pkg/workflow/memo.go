package workflow

import (
	"fmt"
	"strings"

	"analytica-hq/meridian/pkg/rules"
	"analytica-hq/meridian/pkg/underwriting"
)

// BuildMemo renders the plain-text credit memo for a completed run. The
// memo summarises the application, the computed ratios, the compliance
// findings, and the decision, in the order an underwriter reads them.
func BuildMemo(run *Run, c *underwriting.Case, d *underwriting.Decision) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CREDIT MEMO\n")
	fmt.Fprintf(&b, "Case: %s    Run: %s\n", c.ID, run.ID)
	fmt.Fprintf(&b, "Submitted: %s\n\n", c.SubmittedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "APPLICANT\n")
	fmt.Fprintf(&b, "  Age: %d    Occupation: %s\n", c.Applicant.Age, c.Applicant.Occupation)
	fmt.Fprintf(&b, "  Monthly income: %.2f\n", c.Applicant.MonthlyIncome)
	if c.Applicant.StableEmployment {
		fmt.Fprintf(&b, "  Employment: stable\n")
	} else {
		fmt.Fprintf(&b, "  Employment: not classified as stable\n")
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "FACILITY\n")
	fmt.Fprintf(&b, "  Amount: %.2f    Term: %d months\n", c.Loan.Amount, c.Loan.TermMonths)
	if c.Loan.Purpose != "" {
		fmt.Fprintf(&b, "  Purpose: %s\n", c.Loan.Purpose)
	}
	if c.CollateralValue > 0 {
		fmt.Fprintf(&b, "  Collateral: %.2f\n", c.CollateralValue)
	} else {
		fmt.Fprintf(&b, "  Collateral: unsecured\n")
	}
	b.WriteByte('\n')

	if bu := c.Bureau; bu != nil {
		fmt.Fprintf(&b, "CREDIT BUREAU (%s)\n", bu.Source)
		fmt.Fprintf(&b, "  Score: %d (%s)    Delinquent accounts: %d    Inquiries (6m): %d\n",
			bu.Score, underwriting.RiskCategoryForScore(bu.Score), bu.DelinquentAccounts, bu.InquiriesLast6M)
		fmt.Fprintf(&b, "  Total debt: %.2f\n", bu.TotalDebt)
		if bu.Degraded {
			fmt.Fprintf(&b, "  NOTE: degraded snapshot, live bureau unavailable\n")
		}
		b.WriteByte('\n')
	}

	if f := run.State.Features; f != nil {
		fmt.Fprintf(&b, "RATIOS\n")
		if dti, ok := f.Lookup(rules.FeatureDTI); ok {
			fmt.Fprintf(&b, "  DTI:  %.3f\n", dti)
		}
		if dscr, ok := f.Lookup(rules.FeatureDSCR); ok {
			fmt.Fprintf(&b, "  DSCR: %.3f\n", dscr)
		}
		if ltv, ok := f.Lookup(rules.FeatureLTV); ok {
			fmt.Fprintf(&b, "  LTV:  %.3f\n", ltv)
		}
		b.WriteByte('\n')
	}

	if v := run.State.Verdict; v != nil {
		fmt.Fprintf(&b, "COMPLIANCE: %s\n", v.Status)
		fmt.Fprintf(&b, "  Rules evaluated: %d    Passed: %d\n", v.RulesEvaluated, v.RulesPassed)
		for _, fd := range v.Violations {
			fmt.Fprintf(&b, "  VIOLATION [%s] %s\n", fd.Severity, fd.Name)
		}
		for _, fd := range v.Flags {
			fmt.Fprintf(&b, "  FLAG      [%s] %s\n", fd.Severity, fd.Name)
		}
		for _, fd := range v.Warnings {
			fmt.Fprintf(&b, "  WARNING   [%s] %s\n", fd.Severity, fd.Name)
		}
		b.WriteByte('\n')
	}

	if s := run.State.Score; s != nil {
		fmt.Fprintf(&b, "SCORING\n")
		fmt.Fprintf(&b, "  Probability of default: %.4f (model %s, confidence %.2f)\n",
			s.ProbabilityOfDefault, s.ModelVersion, s.Confidence)
		b.WriteByte('\n')
	}

	op := d.Reasoner
	if op.Recommendation != "" {
		fmt.Fprintf(&b, "QUALITATIVE OPINION (advisory)\n")
		if op.Degraded {
			fmt.Fprintf(&b, "  No qualitative signal available\n")
		} else {
			fmt.Fprintf(&b, "  Recommendation: %s (confidence %.2f)\n", op.Recommendation, op.Confidence)
			if op.FreeText != "" {
				fmt.Fprintf(&b, "  %s\n", op.FreeText)
			}
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "DECISION: %s\n", d.Status)
	fmt.Fprintf(&b, "  %s\n", d.Reason)
	fmt.Fprintf(&b, "  Score: %.4f\n", d.Score)
	fmt.Fprintf(&b, "  Decided by %s at %s\n", d.DecidedBy, d.DecidedAt.Format("2006-01-02 15:04:05 MST"))

	return b.String()
}
