package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
)

func expense(amount string, y, m, d int, category string) core.Expense {
	return core.Expense{
		Amount:   decimal.RequireFromString(amount),
		Date:     core.NewDate(y, m, d),
		Month:    m,
		Year:     y,
		Category: category,
	}
}

func TestInsertAndFind(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Insert(ctx, "alice", expense("10", 2024, 1, 15, "Bill"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.FindByID(ctx, "alice", id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != id || got.Category != "Bill" {
		t.Fatalf("unexpected record: %+v", got)
	}

	// other partitions never see it
	if _, err := s.FindByID(ctx, "bob", id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound across partitions, got %v", err)
	}
	if _, err := s.FindByID(ctx, "alice", "nope"); !errors.Is(err, core.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestIDLookupIsCaseAndSpaceInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, _ := s.Insert(ctx, "alice", expense("10", 2024, 1, 15, "Bill"))

	for _, variant := range []string{strings.ToUpper(id), " " + id + " "} {
		got, err := s.FindByID(ctx, "alice", variant)
		if err != nil || got.ID != id {
			t.Fatalf("find %q = %+v, %v", variant, got, err)
		}
	}

	category := "Food"
	got, err := s.UpdateFields(ctx, "alice", strings.ToUpper(id), core.Patch{Category: &category})
	if err != nil || got.Category != "Food" || got.ID != id {
		t.Fatalf("update = %+v, %v", got, err)
	}

	deleted, err := s.DeleteByID(ctx, "alice", " "+strings.ToUpper(id))
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	if all, _ := s.FindAll(ctx, "alice", core.Filter{}); len(all) != 0 {
		t.Fatalf("record still listed: %+v", all)
	}
}

func TestInsertRejectsInvalid(t *testing.T) {
	s := New()
	if _, err := s.Insert(context.Background(), "alice", core.Expense{Category: "Bill"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestFindAllPreservesOrderAndFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _ = s.Insert(ctx, "alice", expense("1", 2024, 2, 1, "Food"))
	_, _ = s.Insert(ctx, "alice", expense("2", 2024, 1, 1, "Bill"))
	_, _ = s.Insert(ctx, "alice", expense("3", 2023, 1, 1, "Bill"))

	all, _ := s.FindAll(ctx, "alice", core.Filter{})
	if len(all) != 3 || all[0].Category != "Food" || all[2].Year != 2023 {
		t.Fatalf("unexpected order: %+v", all)
	}

	month := 1
	jan, _ := s.FindAll(ctx, "alice", core.Filter{Month: &month})
	if len(jan) != 2 {
		t.Fatalf("expected 2 january records, got %d", len(jan))
	}

	empty, err := s.FindAll(ctx, "nobody", core.Filter{})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v (%v)", empty, err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, _ := s.Insert(ctx, "alice", expense("10", 2024, 1, 15, "Bill"))

	cat := "Food"
	p, _ := core.Patch{Category: &cat}.Normalize()
	got, err := s.UpdateFields(ctx, "alice", id, p)
	if err != nil || got.Category != "Food" || !got.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("update = %+v, %v", got, err)
	}
	if _, err := s.UpdateFields(ctx, "alice", core.NewID(), p); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ok, err := s.DeleteByID(ctx, "alice", id)
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	ok, _ = s.DeleteByID(ctx, "alice", id)
	if ok {
		t.Fatalf("second delete should report false")
	}
	all, _ := s.FindAll(ctx, "alice", core.Filter{})
	if len(all) != 0 {
		t.Fatalf("expected empty partition, got %d", len(all))
	}
}

func TestNewFromDir(t *testing.T) {
	dir := t.TempDir()
	seed := `{"alice":[{"amount":12.5,"date":"2024-03-02","category":"Food","description":"lunch"}]}`
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, _ := s.FindAll(context.Background(), "alice", core.Filter{})
	if len(all) != 1 || all[0].Month != 3 || all[0].Year != 2024 || all[0].ID == "" {
		t.Fatalf("unexpected seeded records: %+v", all)
	}

	// missing seed is fine
	if _, err := NewFromDir(t.TempDir()); err != nil {
		t.Fatalf("missing seed should not fail: %v", err)
	}
}
