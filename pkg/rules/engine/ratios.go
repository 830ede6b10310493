package engine

// Degenerate-input sentinels. The ratio helpers never divide by zero and
// never return infinities: a case with no income gets the worst possible
// DTI, a case with no debt service gets a large finite DSCR, and a loan
// with no collateral gets the worst possible LTV.
const (
	// MaxDTI is the worst-case debt-to-income ratio.
	MaxDTI = 1.0

	// MaxDSCR is the finite stand-in for unlimited debt-service coverage.
	MaxDSCR = 999.0

	// MaxLTV is the worst-case loan-to-value ratio.
	MaxLTV = 1.0

	// existingDebtAmortizationMonths spreads existing bureau debt over a
	// standard long amortization when estimating its monthly service.
	existingDebtAmortizationMonths = 360
)

// DTI computes the debt-to-income ratio: estimated total monthly debt
// service divided by monthly income, clamped to [0, MaxDTI]. Zero income
// yields MaxDTI exactly.
func DTI(monthlyIncome, loanAmount float64, termMonths int, existingDebt float64) float64 {
	if monthlyIncome <= 0 {
		return MaxDTI
	}
	dti := totalMonthlyDebtService(loanAmount, termMonths, existingDebt) / monthlyIncome
	if dti > MaxDTI {
		return MaxDTI
	}
	if dti < 0 {
		return 0
	}
	return dti
}

// DSCR computes the debt-service coverage ratio: total monthly income
// (declared plus monthly operating income) divided by total monthly debt
// service. Zero income yields 0; zero debt service yields MaxDSCR.
func DSCR(monthlyIncome, annualOperatingIncome, loanAmount float64, termMonths int, existingDebt float64) float64 {
	totalIncome := monthlyIncome
	if annualOperatingIncome > 0 {
		totalIncome += annualOperatingIncome / 12
	}
	if totalIncome <= 0 {
		return 0
	}

	service := totalMonthlyDebtService(loanAmount, termMonths, existingDebt)
	if service <= 0 {
		return MaxDSCR
	}

	dscr := totalIncome / service
	if dscr > MaxDSCR {
		return MaxDSCR
	}
	return dscr
}

// LTV computes the loan-to-value ratio. Absent or zero collateral yields
// MaxLTV; the surrounding catalogue rule exempts unsecured loans by
// construction (see Featurize).
func LTV(loanAmount, collateralValue float64) float64 {
	if collateralValue <= 0 {
		return MaxLTV
	}
	ltv := loanAmount / collateralValue
	if ltv < 0 {
		return 0
	}
	return ltv
}

// totalMonthlyDebtService estimates the combined monthly payment for the
// requested loan (straight-line over the term) and existing debt (spread
// over the standard amortization window).
func totalMonthlyDebtService(loanAmount float64, termMonths int, existingDebt float64) float64 {
	newService := loanAmount
	if termMonths > 0 {
		newService = loanAmount / float64(termMonths)
	}
	return newService + existingDebt/existingDebtAmortizationMonths
}
