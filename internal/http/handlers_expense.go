package http

import (
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

const deletedMessage = "Expense deleted successfully"

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	account, err := parseAccount(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req core.NewExpense
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sanitizeNewExpense(&req)

	created, err := s.svc.Create(r.Context(), account, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithExpense(account.String(), created.ID, created.Month, created.Year).
			ToSlice()...)
	writeJSON(w, created)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	account, err := parseAccount(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.Get(r.Context(), account, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	account, err := parseAccount(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.svc.List(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(items))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	account, err := parseAccount(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	// Malformed ids are rejected before the body is read.
	if err := core.ValidateID(id); err != nil {
		writeError(w, r, err)
		return
	}

	var patch core.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	sanitizePatch(&patch)

	updated, err := s.svc.Update(r.Context(), account, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense updated",
		log.NewFields().
			WithOperation(log.OpUpdate).
			WithExpense(account.String(), updated.ID, updated.Month, updated.Year).
			ToSlice()...)
	writeJSON(w, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	account, err := parseAccount(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := s.svc.Delete(r.Context(), account, id); err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldAccount, account.String(),
		log.FieldExpenseID, id)
	writeJSON(w, MessageBody{Message: deletedMessage})
}

// nonNil keeps empty results encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
