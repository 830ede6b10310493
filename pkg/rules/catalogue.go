package rules

// DefaultRuleSet returns the built-in lending catalogue: the regulatory
// constraints (REG_*) and internal lending policies (INT_*). Deployments
// normally load a catalogue file instead; this set is the shipped default
// and the reference for catalogue authors.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Version: "2024.1",
		Name:    "lending-policy",
		Rules: []*Rule{
			{
				ID:          "REG_AGE_001",
				Name:        "Borrower Age Limit",
				Description: "Borrower must be between 21 and 65 years old",
				Severity:    SeverityHigh,
				Action:      ActionReject,
				When:        &Predicate{Feature: FeatureApplicantAge, Op: OpBetween, Min: 21, Max: 65},
			},
			{
				ID:          "REG_DTI_001",
				Name:        "Maximum DTI Ratio",
				Description: "Debt-to-income ratio must not exceed 40%",
				Severity:    SeverityHigh,
				Action:      ActionReject,
				When:        &Predicate{Feature: FeatureDTI, Op: OpLTE, Value: 0.40},
			},
			{
				ID:          "REG_INCOME_001",
				Name:        "Minimum Monthly Income",
				Description: "Borrower must have a monthly income of at least 3,000,000",
				Severity:    SeverityMedium,
				Action:      ActionFlag,
				When:        &Predicate{Feature: FeatureMonthlyIncome, Op: OpGTE, Value: 3_000_000},
			},
			{
				ID:          "REG_LTV_001",
				Name:        "Maximum Loan-to-Value Ratio",
				Description: "LTV must not exceed 80% for secured loans",
				Severity:    SeverityHigh,
				Action:      ActionReject,
				// The LTV cap applies to secured facilities only, which a
				// single-feature comparison cannot express.
				Custom: func(f FeatureMap) (bool, error) {
					collateral, ok := f.Lookup(FeatureCollateralValue)
					if !ok {
						return false, &MissingFeatureError{Feature: FeatureCollateralValue}
					}
					if collateral <= 0 {
						return true, nil // unsecured: no collateral constraint
					}
					ltv, ok := f.Lookup(FeatureLTV)
					if !ok {
						return false, &MissingFeatureError{Feature: FeatureLTV}
					}
					return ltv <= 0.80, nil
				},
			},
			{
				ID:          "REG_CREDIT_001",
				Name:        "No Active Delinquencies",
				Description: "Borrower must not have active delinquent accounts",
				Severity:    SeverityHigh,
				Action:      ActionReject,
				When:        &Predicate{Feature: FeatureDelinquents, Op: OpEQ, Value: 0},
			},
			{
				ID:          "REG_DSCR_001",
				Name:        "Minimum DSCR",
				Description: "Debt service coverage ratio must be at least 1.25",
				Severity:    SeverityHigh,
				Action:      ActionReject,
				When:        &Predicate{Feature: FeatureDSCR, Op: OpGTE, Value: 1.25},
			},
			{
				ID:          "INT_AMOUNT_001",
				Name:        "Maximum Loan Amount",
				Description: "Loan amount must not exceed 500,000,000",
				Severity:    SeverityHigh,
				Action:      ActionReject,
				When:        &Predicate{Feature: FeatureLoanAmount, Op: OpLTE, Value: 500_000_000},
			},
			{
				ID:          "INT_CREDIT_001",
				Name:        "Minimum Credit Score",
				Description: "Bureau score must be at least 550",
				Severity:    SeverityMedium,
				Action:      ActionFlag,
				When:        &Predicate{Feature: FeatureBureauScore, Op: OpGTE, Value: 550},
			},
			{
				ID:          "INT_TERM_001",
				Name:        "Maximum Loan Term",
				Description: "Loan term must not exceed 60 months",
				Severity:    SeverityMedium,
				Action:      ActionFlag,
				When:        &Predicate{Feature: FeatureLoanTerm, Op: OpLTE, Value: 60},
			},
			{
				ID:          "INT_EMPLOY_001",
				Name:        "Employment Stability",
				Description: "Borrower should have stable employment",
				Severity:    SeverityLow,
				Action:      ActionWarn,
				When:        &Predicate{Feature: FeatureStableEmployment, Op: OpEQ, Value: 1},
			},
			{
				ID:          "INT_INQUIRY_001",
				Name:        "Recent Credit Inquiries",
				Description: "No more than 3 credit inquiries in the last 6 months",
				Severity:    SeverityLow,
				Action:      ActionWarn,
				When:        &Predicate{Feature: FeatureInquiries6M, Op: OpLTE, Value: 3},
			},
		},
	}
}
