package underwriting

// RiskCategory buckets a bureau score for reporting. The bands follow the
// bureau's published 300-850 range.
type RiskCategory string

const (
	RiskVeryLow RiskCategory = "VERY_LOW"
	RiskLow     RiskCategory = "LOW"
	RiskMedium  RiskCategory = "MEDIUM"
	RiskHigh    RiskCategory = "HIGH"
)

// RiskCategoryForScore maps a bureau score to its risk band.
func RiskCategoryForScore(score int) RiskCategory {
	switch {
	case score >= 750:
		return RiskVeryLow
	case score >= 650:
		return RiskLow
	case score >= 550:
		return RiskMedium
	default:
		return RiskHigh
	}
}
