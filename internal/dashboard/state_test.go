package dashboard

import (
	"testing"

	"expensetracker/internal/core"
)

func TestSelect(t *testing.T) {
	s := InitialState()
	if s.View != ViewSummary {
		t.Fatalf("initial view = %q", s.View)
	}

	s = Select(s, Action{Kind: Navigate, View: ViewUpdate})
	s = Select(s, Action{Kind: Target, ID: "abc"})
	s = Select(s, Action{Kind: Loaded, Expense: &core.Expense{ID: "other"}})
	if s.Fetched != nil {
		t.Fatal("record for a different id must be ignored")
	}

	e := core.Expense{ID: "abc", Category: "Bill"}
	s = Select(s, Action{Kind: Loaded, Expense: &e})
	if s.Fetched == nil || s.Fetched.Category != "Bill" {
		t.Fatalf("fetched = %+v", s.Fetched)
	}
	e.Category = "changed"
	if s.Fetched.Category != "Bill" {
		t.Fatal("state must not alias the caller's record")
	}

	same := Select(s, Action{Kind: Navigate, View: ViewUpdate})
	if same.Fetched == nil {
		t.Fatal("navigating to the current view keeps the form")
	}

	if got := Select(s, Action{Kind: Navigate, View: "bogus"}); got.View != ViewUpdate {
		t.Fatalf("unknown view accepted: %q", got.View)
	}

	s = Select(s, Action{Kind: Done})
	if s.TargetID != "" || s.Fetched != nil || s.View != ViewUpdate {
		t.Fatalf("after done = %+v", s)
	}

	s = Select(s, Action{Kind: Target, ID: "x"})
	s = Select(s, Action{Kind: Navigate, View: ViewDelete})
	if s.TargetID != "" || s.View != ViewDelete {
		t.Fatalf("navigate must reset the target: %+v", s)
	}
}
