package http

import (
	"net/http"

	"ledger/internal/derive"
	"ledger/internal/log"
	"ledger/internal/services"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Snapshot())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summary())
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilterQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ListTransactions(f))
}

// handleExportCSV sends the filtered list as a CSV attachment.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilterQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs := s.svc.ListTransactions(f)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+derive.CSVFileName(s.svc.Now())+`"`)
	if err := derive.WriteCSV(w, txs); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed", log.FieldError, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.svc.AddTransaction(r.Context(), services.TransactionInput{
		Kind:        p.Get("type"),
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Date:        p.Get("date"),
		Description: p.Get("description"),
		Recurring:   p.GetBool("isRecurring"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.BudgetStatuses())
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.svc.AddBudget(r.Context(), services.BudgetInput{
		Category: p.Get("category"),
		Limit:    p.Get("limit"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.svc.UpdateBudgetLimit(r.Context(), r.PathValue("id"), p.Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// categoriesResponse lists every category and those still free for a budget.
type categoriesResponse struct {
	Categories         []string `json:"categories"`
	AvailableForBudget []string `json:"availableForBudget"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	state := s.svc.Snapshot()
	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories:         state.Categories,
		AvailableForBudget: derive.AvailableBudgetCategories(state),
	})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}

	name := p.Get("name")
	if err := s.svc.AddCategory(r.Context(), name); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// handleExportSheet writes the filtered list to the configured sheet.
func (s *Server) handleExportSheet(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilterQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	ref, err := s.exporter.ExportTransactions(r.Context(), s.svc.ListTransactions(f))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Sheet export failed", log.FieldError, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "sheet export failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"range": ref})
}
