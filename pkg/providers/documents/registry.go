package documents

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"analytica-hq/meridian/pkg/underwriting"
)

// Type identifies a document category.
type Type string

const (
	TypeIDCard          Type = "ID_CARD"
	TypeIncomeStatement Type = "INCOME_STATEMENT"
	TypeBalanceSheet    Type = "BALANCE_SHEET"
	TypeCashFlow        Type = "CASH_FLOW"
	TypeBankStatement   Type = "BANK_STATEMENT"
	TypeTaxReturn       Type = "TAX_RETURN"
	TypeSalarySlip      Type = "SALARY_SLIP"
	TypeBusinessLicense Type = "BUSINESS_LICENSE"
	TypeOther           Type = "OTHER"
)

// Document is one file attached to a case.
type Document struct {
	Type Type `json:"type" yaml:"type"`

	// Name is the original filename, for operator display.
	Name string `json:"name" yaml:"name"`

	// Readable is false when the intake pipeline could not extract text
	// from the file. An unreadable mandatory document counts as missing.
	Readable bool `json:"readable" yaml:"readable"`

	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// mandatory lists the documents every application must carry. Proof of
// income is satisfied by either an income statement or a salary slip.
var mandatory = []Type{TypeIDCard, TypeBankStatement}

var incomeProof = []Type{TypeIncomeStatement, TypeSalarySlip}

// Registry is the in-memory document service. Documents and extracted
// metrics are attached per case before submission.
type Registry struct {
	logger *slog.Logger

	mu      sync.RWMutex
	docs    map[string][]Document
	metrics map[string]underwriting.FinancialMetrics
}

// NewRegistry creates an empty document registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger.With("component", "documents"),
		docs:    make(map[string][]Document),
		metrics: make(map[string]underwriting.FinancialMetrics),
	}
}

// Attach adds documents to a case.
func (r *Registry) Attach(caseID string, docs ...Document) {
	r.mu.Lock()
	r.docs[caseID] = append(r.docs[caseID], docs...)
	r.mu.Unlock()
}

// SetMetrics records the financial metrics extracted from the case's
// documents.
func (r *Registry) SetMetrics(caseID string, m underwriting.FinancialMetrics) {
	r.mu.Lock()
	r.metrics[caseID] = m
	r.mu.Unlock()
}

// Sufficiency reports whether every mandatory document is present and
// readable, listing the missing types.
func (r *Registry) Sufficiency(ctx context.Context, caseID string) (bool, []string, error) {
	r.mu.RLock()
	docs := r.docs[caseID]
	r.mu.RUnlock()

	present := make(map[Type]bool, len(docs))
	for _, d := range docs {
		if d.Readable {
			present[d.Type] = true
		}
	}

	var missing []string
	for _, t := range mandatory {
		if !present[t] {
			missing = append(missing, string(t))
		}
	}
	hasIncomeProof := false
	for _, t := range incomeProof {
		if present[t] {
			hasIncomeProof = true
			break
		}
	}
	if !hasIncomeProof {
		missing = append(missing, fmt.Sprintf("%s or %s", TypeIncomeStatement, TypeSalarySlip))
	}

	if len(missing) > 0 {
		r.logger.Debug("document sufficiency check failed",
			"case_id", caseID,
			"missing", missing,
		)
		return false, missing, nil
	}
	return true, nil, nil
}

// Metrics returns the extracted financial metrics for the case. An
// error means nothing was extracted; the caller falls back to the
// declared figures.
func (r *Registry) Metrics(ctx context.Context, caseID string) (underwriting.FinancialMetrics, error) {
	r.mu.RLock()
	m, ok := r.metrics[caseID]
	r.mu.RUnlock()
	if !ok {
		return underwriting.FinancialMetrics{}, fmt.Errorf("no extracted metrics for case %s", caseID)
	}
	return m, nil
}
