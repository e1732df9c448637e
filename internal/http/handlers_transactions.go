package http

import (
	"net/http"

	"enriquecer/internal/core"
)

type transactionsResponse struct {
	Month        string             `json:"month,omitempty"`
	Transactions []core.Transaction `json:"transactions"`
}

// handleListTransactions returns the whole history, or a single month when
// year or month is given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.backend.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, r, "List transactions failed", err)
		return
	}

	resp := transactionsResponse{Transactions: txs}
	if q := r.URL.Query(); HasMonth(q) {
		p := ParseMonthParams(q, s.now())
		resp.Month = p.Key()
		resp.Transactions = core.MonthSummary(txs, resp.Month).Transactions
	}
	NewResponse().JSON(resp).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	tx, err := s.backend.CreateTransaction(r.Context(), parser.Draft())
	if err != nil {
		if core.IsValidation(err) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		s.internalError(w, r, "Create transaction failed", err)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		JSON(tx).
		Write(w)
}

// handleDeleteTransaction answers 204 whether or not the id existed.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		s.internalError(w, r, "Delete transaction failed", err)
		return
	}
	NoContent().Write(w)
}
