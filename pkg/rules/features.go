package rules

// Well-known feature names shared between the feature derivation code and
// the built-in catalogue. Features use dotted paths grouped by source.
const (
	FeatureApplicantAge     = "applicant.age"
	FeatureMonthlyIncome    = "applicant.monthly_income"
	FeatureStableEmployment = "applicant.stable_employment"

	FeatureLoanAmount = "loan.amount"
	FeatureLoanTerm   = "loan.term_months"

	FeatureBureauScore     = "bureau.score"
	FeatureDelinquents     = "bureau.delinquent_accounts"
	FeatureInquiries6M     = "bureau.inquiries_6m"
	FeatureTotalDebt       = "bureau.total_debt"
	FeatureCollateralValue = "collateral.value"

	FeatureDTI  = "ratio.dti"
	FeatureDSCR = "ratio.dscr"
	FeatureLTV  = "ratio.ltv"
)

// FeatureMap is the flat numeric view of a case that predicates evaluate
// against. Booleans are encoded as 0/1. A feature that is genuinely
// unknown must be absent from the map, not zero: the engine treats a
// missing required feature as a failed-safe violation.
type FeatureMap map[string]float64

// Lookup returns the feature value and whether it is present.
func (f FeatureMap) Lookup(name string) (float64, bool) {
	v, ok := f[name]
	return v, ok
}

// Merge returns a copy of f with entries from overlays applied on top.
// Later overlays win on key conflicts.
func (f FeatureMap) Merge(overlays ...FeatureMap) FeatureMap {
	out := make(FeatureMap, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, o := range overlays {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Bool encodes a boolean feature value.
func Bool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
