package fusion

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"analytica-hq/meridian/pkg/rules/engine"
	"analytica-hq/meridian/pkg/underwriting"
)

// ErrInvalidThresholds indicates a malformed threshold pair.
var ErrInvalidThresholds = errors.New("invalid fusion thresholds")

// Fuser applies the decision-fusion algorithm. A Fuser is immutable after
// construction and safe for concurrent use.
type Fuser struct {
	approveThreshold float64
	rejectThreshold  float64
	logger           *slog.Logger
}

// New creates a Fuser. The approve threshold must be strictly greater
// than the reject threshold and both must lie in [0,1]; anything else is
// a configuration error.
func New(approveThreshold, rejectThreshold float64, logger *slog.Logger) (*Fuser, error) {
	if approveThreshold < 0 || approveThreshold > 1 {
		return nil, fmt.Errorf("%w: approve threshold %v outside [0,1]", ErrInvalidThresholds, approveThreshold)
	}
	if rejectThreshold < 0 || rejectThreshold > 1 {
		return nil, fmt.Errorf("%w: reject threshold %v outside [0,1]", ErrInvalidThresholds, rejectThreshold)
	}
	if approveThreshold <= rejectThreshold {
		return nil, fmt.Errorf("%w: approve threshold %v must be strictly greater than reject threshold %v",
			ErrInvalidThresholds, approveThreshold, rejectThreshold)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fuser{
		approveThreshold: approveThreshold,
		rejectThreshold:  rejectThreshold,
		logger:           logger.With("component", "fusion"),
	}, nil
}

// Thresholds returns the configured (approve, reject) pair.
func (f *Fuser) Thresholds() (approve, reject float64) {
	return f.approveThreshold, f.rejectThreshold
}

// Fuse combines the inputs into a Decision. score is the creditworthiness
// score in [0,1], higher is better. The opinion is recorded for audit
// only. The caller assigns the decision ID and run/case references.
func (f *Fuser) Fuse(score float64, opinion underwriting.ReasonerOpinion, verdict *engine.Verdict) *underwriting.Decision {
	d := &underwriting.Decision{
		Score: score,
		Contribution: underwriting.Contribution{
			Rule:     1,
			Score:    score,
			Reasoner: opinion.Confidence,
		},
		Reasoner:  opinion,
		DecidedBy: underwriting.DeciderAuto,
		DecidedAt: time.Now().UTC(),
	}

	switch {
	case verdict.Status == engine.StatusReject:
		names := verdict.ViolatedRuleNames()
		d.Status = underwriting.DecisionReject
		d.Reason = "policy violations: " + strings.Join(names, ", ")
		d.Violations = names
		d.Contribution.Rule = 0

	case score >= f.approveThreshold:
		d.Status = underwriting.DecisionApprove
		d.Reason = fmt.Sprintf("auto-approved: score %.2f >= approve threshold %.2f", score, f.approveThreshold)

	case score < f.rejectThreshold:
		d.Status = underwriting.DecisionReject
		d.Reason = fmt.Sprintf("auto-rejected: score %.2f < reject threshold %.2f", score, f.rejectThreshold)

	default:
		d.Status = underwriting.DecisionManualReview
		d.Reason = fmt.Sprintf("manual review: score %.2f in borderline band [%.2f, %.2f)",
			score, f.rejectThreshold, f.approveThreshold)
	}

	f.logger.Debug("decision fused",
		"status", d.Status,
		"score", score,
		"verdict_status", verdict.Status,
		"reasoner_recommendation", opinion.Recommendation,
	)

	return d
}
