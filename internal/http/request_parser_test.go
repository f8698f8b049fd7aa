package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"expensetracker/internal/core"
)

func TestParseAccount(t *testing.T) {
	tests := []struct {
		query   string
		want    core.Account
		wantErr bool
	}{
		{"collection_name=home", "home", false},
		{"account=work", "work", false},
		{"collection_name=home&account=work", "home", false},
		{"collection_name=%20&account=work", "work", false},
		{"", "", true},
		{"collection_name=bad/name", "", true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := parseAccount(q)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseAccount(%q) err = %v", tt.query, err)
		}
		if got != tt.want {
			t.Fatalf("parseAccount(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		query     string
		wantMonth *int
		wantYear  *int
		wantErr   bool
	}{
		{"", nil, nil, false},
		{"month=&year=", nil, nil, false},
		{"month=3", intPtr(3), nil, false},
		{"year=2024", nil, intPtr(2024), false},
		{"month=12&year=2023", intPtr(12), intPtr(2023), false},
		{"month=13", nil, nil, true},
		{"month=x", nil, nil, true},
		{"year=2024.5", nil, nil, true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		f, err := parseFilter(q)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseFilter(%q) err = %v", tt.query, err)
		}
		if err != nil {
			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("parseFilter(%q) error %v is not a validation error", tt.query, err)
			}
			continue
		}
		if !sameInt(f.Month, tt.wantMonth) || !sameInt(f.Year, tt.wantYear) {
			t.Fatalf("parseFilter(%q) = %+v", tt.query, f)
		}
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"category":"a"} {"category":"b"}`))
	var n core.NewExpense
	err := decodeJSON(httptest.NewRecorder(), req, &n)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyLimit(t *testing.T) {
	big := `{"description":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	var p core.Patch
	err := decodeJSON(httptest.NewRecorder(), req, &p)
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Field != "body" {
		t.Fatalf("expected body validation error, got %v", err)
	}
}

func TestSanitizeText(t *testing.T) {
	if got := sanitizeText("Food\x00 &\tDrink\n\x1b"); got != "Food &\tDrink\n" {
		t.Fatalf("sanitizeText = %q", got)
	}
}

func intPtr(v int) *int { return &v }

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
