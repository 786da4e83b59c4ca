package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TopVendorCount is how many vendors the summary and reports list
const TopVendorCount = 10

// GroupTotal is one aggregation bucket
type GroupTotal struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Summary aggregates the active ledger. Buckets are sorted by key so
// the same ledger always yields the same summary.
type Summary struct {
	Count         int             `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AverageAmount decimal.Decimal `json:"average_amount"`
	ByStatus      []GroupTotal    `json:"by_status"`
	ByProject     []GroupTotal    `json:"by_project"`
	ByFiscalYear  []GroupTotal    `json:"by_fiscal_year"`
	ByCurrency    []GroupTotal    `json:"by_currency"`
	TopVendors    []GroupTotal    `json:"top_vendors"`
}

// FiscalYearReport is the derived view over one fiscal year
type FiscalYearReport struct {
	FiscalYear    string          `json:"fiscal_year"`
	Count         int             `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AverageAmount decimal.Decimal `json:"average_amount"`
	ByProject     []GroupTotal    `json:"by_project"`
	ByGrant       []GroupTotal    `json:"by_grant"`
	ByStatus      []GroupTotal    `json:"by_status"`
	TopVendors    []GroupTotal    `json:"top_vendors"`
}

// ProjectReport is the derived view over one project code
type ProjectReport struct {
	ProjectCode string          `json:"project_code"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ByGrant     []GroupTotal    `json:"by_grant"`
	ByCategory  []GroupTotal    `json:"by_category"`
	ByStatus    []GroupTotal    `json:"by_status"`
}

// Service builds read-only aggregate views over the ledger. All
// reports derive from query + in-memory aggregation; they hold no
// state of their own. Rejected entries are excluded everywhere.
type Service struct {
	repo ledger.Repository
}

// NewService creates a new report Service
func NewService(repo ledger.Repository) *Service {
	return &Service{repo: repo}
}

// Query lists ledger entries matching the filter in canonical order
func (s *Service) Query(ctx context.Context, filter ledger.QueryFilter) ([]ledger.LedgerEntry, error) {
	return s.repo.Query(ctx, filter)
}

// Summary aggregates all active entries
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	entries, err := s.repo.Query(ctx, ledger.QueryFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("summary query failed: %w", err)
	}

	agg := newAggregator(entries)
	return &Summary{
		Count:         len(entries),
		TotalAmount:   agg.total,
		AverageAmount: agg.average(),
		ByStatus:      agg.byKey(func(e *ledger.LedgerEntry) string { return e.Status.String() }),
		ByProject:     agg.byKey(projectKey),
		ByFiscalYear:  agg.byKey(func(e *ledger.LedgerEntry) string { return e.FiscalYear }),
		ByCurrency:    agg.byKey(func(e *ledger.LedgerEntry) string { return string(e.Currency) }),
		TopVendors:    agg.topVendors(TopVendorCount),
	}, nil
}

// ForFiscalYear builds the report for one fiscal year label
func (s *Service) ForFiscalYear(ctx context.Context, fiscalYear string) (*FiscalYearReport, error) {
	if fiscalYear == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Fiscal year is required")
	}
	entries, err := s.repo.Query(ctx, ledger.QueryFilter{FiscalYear: &fiscalYear, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("fiscal year query failed: %w", err)
	}

	agg := newAggregator(entries)
	return &FiscalYearReport{
		FiscalYear:    fiscalYear,
		Count:         len(entries),
		TotalAmount:   agg.total,
		AverageAmount: agg.average(),
		ByProject:     agg.byKey(projectKey),
		ByGrant:       agg.byKey(grantKey),
		ByStatus:      agg.byKey(func(e *ledger.LedgerEntry) string { return e.Status.String() }),
		TopVendors:    agg.topVendors(TopVendorCount),
	}, nil
}

// ForProject builds the report for one project code
func (s *Service) ForProject(ctx context.Context, projectCode string) (*ProjectReport, error) {
	if projectCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Project code is required")
	}
	entries, err := s.repo.Query(ctx, ledger.QueryFilter{ProjectCode: &projectCode, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("project query failed: %w", err)
	}

	agg := newAggregator(entries)
	return &ProjectReport{
		ProjectCode: projectCode,
		Count:       len(entries),
		TotalAmount: agg.total,
		ByGrant:     agg.byKey(grantKey),
		ByCategory:  agg.byKey(func(e *ledger.LedgerEntry) string { return e.CategoryPrimary }),
		ByStatus:    agg.byKey(func(e *ledger.LedgerEntry) string { return e.Status.String() }),
	}, nil
}

func projectKey(e *ledger.LedgerEntry) string {
	if e.ProjectCode == "" {
		return "unassigned"
	}
	return e.ProjectCode
}

func grantKey(e *ledger.LedgerEntry) string {
	if e.GrantCode == "" {
		return "unassigned"
	}
	return e.GrantCode
}

// aggregator computes grouped totals over one entry set
type aggregator struct {
	entries []ledger.LedgerEntry
	total   decimal.Decimal
}

func newAggregator(entries []ledger.LedgerEntry) *aggregator {
	total := decimal.Zero
	for i := range entries {
		total = total.Add(entries[i].GrandTotal)
	}
	return &aggregator{entries: entries, total: total}
}

func (a *aggregator) average() decimal.Decimal {
	if len(a.entries) == 0 {
		return decimal.Zero
	}
	return a.total.Div(decimal.NewFromInt(int64(len(a.entries)))).Round(2)
}

// byKey groups entries by the key function, buckets sorted by key
func (a *aggregator) byKey(key func(e *ledger.LedgerEntry) string) []GroupTotal {
	buckets := map[string]*GroupTotal{}
	for i := range a.entries {
		k := key(&a.entries[i])
		b, ok := buckets[k]
		if !ok {
			b = &GroupTotal{Key: k, Total: decimal.Zero}
			buckets[k] = b
		}
		b.Count++
		b.Total = b.Total.Add(a.entries[i].GrandTotal)
	}

	out := make([]GroupTotal, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// topVendors returns the n vendors with the highest totals, ties
// broken by vendor name ascending
func (a *aggregator) topVendors(n int) []GroupTotal {
	vendors := a.byKey(func(e *ledger.LedgerEntry) string { return e.VendorName })
	sort.Slice(vendors, func(i, j int) bool {
		if !vendors[i].Total.Equal(vendors[j].Total) {
			return vendors[i].Total.GreaterThan(vendors[j].Total)
		}
		return vendors[i].Key < vendors[j].Key
	})
	if len(vendors) > n {
		vendors = vendors[:n]
	}
	return vendors
}
