package Inspections

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func TestNextConsecutiveFirstNumber(t *testing.T) {
	store, fake := newTestStore()
	seedCounterHeader(fake, "(SU01) Panamá", "(SU02) Chiriquí")

	number, err := store.NextConsecutive(context.Background(), "(SU02) Chiriquí")
	if err != nil {
		t.Fatalf("NextConsecutive: %v", err)
	}
	if number != 1 {
		t.Errorf("first number = %d, want 1", number)
	}
	if got := fake.grid(testCounterSheet).get(2, 1); got != "1" {
		t.Errorf("counter cell B2 = %q, want 1", got)
	}
}

func TestNextConsecutiveIssuesMaxPlusOne(t *testing.T) {
	store, fake := newTestStore()
	seedCounterHeader(fake, "(SU01) Panamá")
	g := fake.grid(testCounterSheet)
	// Gaps and garbage must not shrink the counter: next is max+1, not
	// count+1.
	g.set(2, 0, "1")
	g.set(3, 0, "")
	g.set(4, 0, "7")
	g.set(5, 0, "old")

	number, err := store.NextConsecutive(context.Background(), "(su01) panamá ")
	if err != nil {
		t.Fatalf("NextConsecutive: %v", err)
	}
	if number != 8 {
		t.Errorf("number = %d, want 8", number)
	}
}

func TestNextConsecutiveUnknownBranch(t *testing.T) {
	store, fake := newTestStore()
	seedCounterHeader(fake, "(SU01) Panamá")

	_, err := store.NextConsecutive(context.Background(), "(SU99) Bocas")
	var unknown *UnknownBranchError
	if !errors.As(err, &unknown) {
		t.Fatalf("want UnknownBranchError, got %v", err)
	}
}

// injectCompetitor writes max+1 into the first free cell of counter column
// B, simulating a racing writer that lands before ours.
func injectCompetitor(fake *fakeValues) int {
	g := fake.grid(testCounterSheet)
	max := 0
	row := 2
	for ; g.get(row, 1) != ""; row++ {
		if v, err := strconv.Atoi(g.get(row, 1)); err == nil && v > max {
			max = v
		}
	}
	g.set(row, 1, strconv.Itoa(max+1))
	return max + 1
}

func TestNextConsecutiveRetriesAfterLosingRace(t *testing.T) {
	store, fake := newTestStore()
	seedCounterHeader(fake, "(SU01) Panamá", "(SU02) Chiriquí")
	fake.grid(testCounterSheet).set(2, 1, "4")

	contested := 0
	var competitorNumber int
	fake.beforeAppend = func() {
		if contested == 0 {
			contested++
			competitorNumber = injectCompetitor(fake)
		}
	}

	number, err := store.NextConsecutive(context.Background(), "(SU02) Chiriquí")
	if err != nil {
		t.Fatalf("NextConsecutive: %v", err)
	}
	if competitorNumber != 5 {
		t.Fatalf("competitor claimed %d, want 5", competitorNumber)
	}
	if number != 6 {
		t.Errorf("loser retried into %d, want 6", number)
	}

	// Both numbers survive exactly once, no duplicates, no lost writes.
	issued := map[string]int{}
	g := fake.grid(testCounterSheet)
	for row := 2; row <= len(g.rows); row++ {
		if v := g.get(row, 1); v != "" {
			issued[v]++
		}
	}
	for _, want := range []string{"4", "5", "6"} {
		if issued[want] != 1 {
			t.Errorf("number %s appears %d times in the column, want 1", want, issued[want])
		}
	}
}

func TestNextConsecutiveExhaustsRetryBudget(t *testing.T) {
	store, fake := newTestStore()
	seedCounterHeader(fake, "(SU01) Panamá", "(SU02) Chiriquí")

	appends := 0
	fake.beforeAppend = func() {
		appends++
		injectCompetitor(fake)
	}

	_, err := store.NextConsecutive(context.Background(), "(SU02) Chiriquí")
	var conflict *ConsecutiveNumberConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConsecutiveNumberConflictError, got %v", err)
	}
	if conflict.Attempts != maxConsecutiveAttempts {
		t.Errorf("Attempts = %d, want %d", conflict.Attempts, maxConsecutiveAttempts)
	}
	if appends != maxConsecutiveAttempts {
		t.Errorf("made %d attempts, want %d", appends, maxConsecutiveAttempts)
	}
}
