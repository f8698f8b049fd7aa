package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"expensetracker/internal/core"
)

// maxBodyBytes bounds request bodies; an expense is a handful of fields.
const maxBodyBytes = 64 << 10

// Query parameter names. "account" is accepted as an alias.
const (
	paramAccount      = "collection_name"
	paramAccountAlias = "account"
	paramMonth        = "month"
	paramYear         = "year"
)

// parseAccount extracts the partition selector from the query string.
func parseAccount(query url.Values) (core.Account, error) {
	name := query.Get(paramAccount)
	if strings.TrimSpace(name) == "" {
		name = query.Get(paramAccountAlias)
	}
	return core.ParseAccount(name)
}

// parseFilter reads the optional month/year query parameters. Blank values
// count as absent.
func parseFilter(query url.Values) (core.Filter, error) {
	month, err := optionalInt(query, paramMonth)
	if err != nil {
		return core.Filter{}, err
	}
	year, err := optionalInt(query, paramYear)
	if err != nil {
		return core.Filter{}, err
	}
	return core.NewFilter(month, year)
}

func optionalInt(query url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, core.NewValidationError(key, fmt.Sprintf("%q is not an integer", raw))
	}
	return &v, nil
}

// decodeJSON reads a single JSON value from the request body into dst.
// Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.NewValidationError("body", "request body is required")
		case errors.As(err, &maxErr):
			return core.NewValidationError("body", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		default:
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				return verr
			}
			return core.NewValidationError("body", "invalid JSON: "+err.Error())
		}
	}
	if dec.More() {
		return core.NewValidationError("body", "request body must contain a single JSON object")
	}
	return nil
}

// sanitizeText drops control characters from free text, keeping tabs and
// newlines.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

func sanitizeNewExpense(n *core.NewExpense) {
	n.Category = sanitizeText(n.Category)
	if n.Description != nil {
		d := sanitizeText(*n.Description)
		n.Description = &d
	}
}

func sanitizePatch(p *core.Patch) {
	if p.Category != nil {
		c := sanitizeText(*p.Category)
		p.Category = &c
	}
	if p.Description != nil {
		d := sanitizeText(*p.Description)
		p.Description = &d
	}
}
