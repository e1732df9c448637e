package http

import (
	"context"
	"net/http"

	"enriquecer/internal/core"
	"enriquecer/internal/log"
)

type summaryKind string

const (
	monthSummary      summaryKind = "month"
	cumulativeSummary summaryKind = "cumulative"
)

type summaryResponse struct {
	Kind         summaryKind          `json:"kind"`
	Month        string               `json:"month"`
	Income       float64              `json:"income"`
	Expense      float64              `json:"expense"`
	Result       float64              `json:"result"`
	Display      summaryDisplay       `json:"display"`
	Transactions []core.Transaction   `json:"transactions"`
	ByCategory   []core.CategoryTotal `json:"expenses_by_category,omitempty"`
}

// summaryDisplay holds the totals rendered as currency.
type summaryDisplay struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Result  string `json:"result"`
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	s.writeSummary(w, r, monthSummary)
}

func (s *Server) handleCumulativeSummary(w http.ResponseWriter, r *http.Request) {
	s.writeSummary(w, r, cumulativeSummary)
}

func (s *Server) writeSummary(w http.ResponseWriter, r *http.Request, kind summaryKind) {
	p := ParseMonthParams(r.URL.Query(), s.now())
	resp, err := s.getSummary(r.Context(), kind, p)
	if err != nil {
		s.internalError(w, r, "Summary failed", err)
		return
	}
	NewResponse().JSON(resp).Write(w)
}

// getSummary returns the memoized summary for kind and month, computing it
// from a fresh snapshot on a miss. The cache is cleared on every change, and a
// result computed while a change landed is returned but not cached.
func (s *Server) getSummary(ctx context.Context, kind summaryKind, p MonthParams) (summaryResponse, error) {
	key := string(kind) + ":" + p.Key()
	logger := log.FromContext(ctx)
	fields := log.NewFields().WithMonth(p.Year, p.Month)

	if resp, ok := s.summaries.Get(key); ok {
		logger.DebugContext(ctx, "Summary cache hit", append(fields.ToSlice(), "kind", kind)...)
		return resp, nil
	}

	gen := s.summaryGeneration()
	txs, err := s.backend.Snapshot(ctx)
	if err != nil {
		return summaryResponse{}, err
	}

	var sum core.Summary
	switch kind {
	case cumulativeSummary:
		sum = core.CumulativeSummary(txs, p.Key())
	default:
		sum = core.MonthSummary(txs, p.Key())
	}

	resp := summaryResponse{
		Kind:         kind,
		Month:        p.Key(),
		Income:       sum.Income,
		Expense:      sum.Expense,
		Result:       sum.Result,
		Transactions: sum.Transactions,
		Display: summaryDisplay{
			Income:  core.FormatBRL(sum.Income),
			Expense: core.FormatBRL(sum.Expense),
			Result:  core.FormatBRL(sum.Result),
		},
	}
	if kind == monthSummary {
		resp.ByCategory = core.ExpensesByCategory(sum.Transactions)
	}

	if !s.storeSummary(key, gen, resp) {
		logger.DebugContext(ctx, "Summary not cached, ledger changed", append(fields.ToSlice(), "kind", kind)...)
		return resp, nil
	}
	logger.DebugContext(ctx, "Summary cached", append(fields.ToSlice(), "kind", kind, "transactions", len(sum.Transactions))...)
	return resp, nil
}

func (s *Server) summaryGeneration() uint64 {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	return s.summaryGen
}

func (s *Server) invalidateSummaries() {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	s.summaryGen++
	s.summaries.Clear()
}

// storeSummary caches resp only if no change happened since gen was read.
func (s *Server) storeSummary(key string, gen uint64, resp summaryResponse) bool {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	if gen != s.summaryGen {
		return false
	}
	s.summaries.Set(key, resp)
	return true
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	txs, err := s.backend.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, r, "Series failed", err)
		return
	}
	NewResponse().JSON(map[string][]core.MonthBucket{
		"series": core.BuildMonthlySeries(txs),
	}).Write(w)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	txs, err := s.backend.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, r, "Years failed", err)
		return
	}
	NewResponse().JSON(map[string][]string{
		"years": core.YearsAvailable(txs, s.now()),
	}).Write(w)
}
