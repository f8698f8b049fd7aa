package http

import (
	"net/http"
)

func (s *Server) handleListByMonthYear(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	account, err := parseAccount(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := parseFilter(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.svc.ListByMonthYear(r.Context(), account, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(items))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	account, err := parseAccount(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := parseFilter(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.svc.Summary(r.Context(), account, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(rows))
}

func (s *Server) handleMonthYears(w http.ResponseWriter, r *http.Request) {
	account, err := parseAccount(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	periods, err := s.svc.MonthYears(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(periods))
}
