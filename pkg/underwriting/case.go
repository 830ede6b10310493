package underwriting

import "time"

// Applicant is the borrower snapshot attached to a Case.
type Applicant struct {
	// Age in whole years at submission time.
	Age int `json:"age" yaml:"age"`

	// MonthlyIncome is the declared monthly income in the ledger currency.
	MonthlyIncome float64 `json:"monthly_income" yaml:"monthly_income"`

	// Occupation is the free-form declared occupation.
	Occupation string `json:"occupation" yaml:"occupation"`

	// StableEmployment marks occupations the intake pipeline classified
	// as stable (salaried, civil service, licensed professions).
	StableEmployment bool `json:"stable_employment" yaml:"stable_employment"`
}

// LoanTerms describes the requested facility.
type LoanTerms struct {
	// Amount is the requested principal.
	Amount float64 `json:"amount" yaml:"amount"`

	// TermMonths is the requested tenor in months.
	TermMonths int `json:"term_months" yaml:"term_months"`

	// Purpose is the declared purpose of the loan.
	Purpose string `json:"purpose" yaml:"purpose"`
}

// FinancialMetrics aggregates the figures extracted from the applicant's
// financial documents. Missing optional figures are left at zero; the
// rule engine treats absent features conservatively.
type FinancialMetrics struct {
	AnnualRevenue    float64 `json:"annual_revenue" yaml:"annual_revenue"`
	OperatingIncome  float64 `json:"operating_income" yaml:"operating_income"`
	TotalAssets      float64 `json:"total_assets" yaml:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities" yaml:"total_liabilities"`
}

// BureauSnapshot is the credit-bureau payload for the applicant.
// Degraded marks a simulated or cached payload substituted when the live
// bureau was unavailable; the workflow engine treats a degraded snapshot
// as a successful fetch because the collaborator signalled it explicitly.
type BureauSnapshot struct {
	Score              int       `json:"score" yaml:"score"`
	TotalAccounts      int       `json:"total_accounts" yaml:"total_accounts"`
	ActiveAccounts     int       `json:"active_accounts" yaml:"active_accounts"`
	DelinquentAccounts int       `json:"delinquent_accounts" yaml:"delinquent_accounts"`
	TotalDebt          float64   `json:"total_debt" yaml:"total_debt"`
	InquiriesLast6M    int       `json:"inquiries_last_6m" yaml:"inquiries_last_6m"`
	Degraded           bool      `json:"degraded" yaml:"degraded"`
	Source             string    `json:"source" yaml:"source"`
	FetchedAt          time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Case is one loan application under evaluation. It is immutable input to
// a single workflow run; the Bureau field is the only part populated
// during the run (step 3), on the engine's private copy.
type Case struct {
	// ID is the stable application identifier.
	ID string `json:"id" yaml:"id"`

	// IdentityRef is the national-identity reference used for the
	// credit-bureau lookup. Treated as PII by the logging redactor.
	IdentityRef string `json:"identity_ref" yaml:"identity_ref"`

	Applicant  Applicant        `json:"applicant" yaml:"applicant"`
	Loan       LoanTerms        `json:"loan" yaml:"loan"`
	Financials FinancialMetrics `json:"financials" yaml:"financials"`

	// Bureau is the credit-bureau snapshot, nil until fetched.
	Bureau *BureauSnapshot `json:"bureau,omitempty" yaml:"bureau,omitempty"`

	// CollateralValue is the appraised collateral value; zero means the
	// facility is unsecured.
	CollateralValue float64 `json:"collateral_value" yaml:"collateral_value"`

	// SubmittedAt is when the application entered the pipeline.
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
}

// Clone returns a deep copy of the case. The workflow engine clones the
// caller's case at start so a run never shares mutable state with its
// submitter.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Bureau != nil {
		b := *c.Bureau
		cp.Bureau = &b
	}
	return &cp
}
