package Inspections

import (
	"context"
	"errors"
	"testing"
	"time"
)

func record(direction Direction, exitOdo, entryOdo float64, day int) historyRecord {
	return historyRecord{
		rowIndex:      day + 1,
		timestamp:     time.Date(2026, 3, day, 8, 0, 0, 0, panamaTime),
		direction:     direction,
		exitOdometer:  exitOdo,
		entryOdometer: entryOdo,
	}
}

func TestCheckOdometerNoHistory(t *testing.T) {
	if err := checkOdometer(nil, "ABC123", DirectionExit, 1); err != nil {
		t.Errorf("first reading of a new plate should pass: %v", err)
	}
	if err := checkOdometer(nil, "ABC123", DirectionExit, 0); err == nil {
		t.Error("a zero reading should never pass, the baseline is zero")
	}
}

func TestCheckOdometerExitSequence(t *testing.T) {
	history := []historyRecord{
		record(DirectionEntry, 200, 250, 3),
		record(DirectionEntry, 100, 150, 2),
	}

	if err := checkOdometer(history, "ABC123", DirectionExit, 260); err != nil {
		t.Errorf("reading above the exit maximum should pass: %v", err)
	}
	if err := checkOdometer(history, "ABC123", DirectionExit, 201); err != nil {
		t.Errorf("exit sequence is independent of entry readings: %v", err)
	}

	err := checkOdometer(history, "ABC123", DirectionExit, 200)
	var regression *OdometerRegressionError
	if !errors.As(err, &regression) {
		t.Fatalf("equal reading: want OdometerRegressionError, got %v", err)
	}
	if regression.LastKnown != 200 {
		t.Errorf("LastKnown = %v, want 200", regression.LastKnown)
	}

	if err := checkOdometer(history, "ABC123", DirectionExit, 150); !errors.As(err, &regression) {
		t.Errorf("lower reading: want OdometerRegressionError, got %v", err)
	}
}

func TestCheckOdometerEntrySequence(t *testing.T) {
	history := []historyRecord{
		record(DirectionExit, 200, 0, 3),
		record(DirectionEntry, 100, 150, 2),
	}

	if err := checkOdometer(history, "ABC123", DirectionEntry, 230); err != nil {
		t.Errorf("entry above both sequences should pass: %v", err)
	}

	var regression *OdometerRegressionError
	if err := checkOdometer(history, "ABC123", DirectionEntry, 150); !errors.As(err, &regression) {
		t.Errorf("entry equal to last entry: want OdometerRegressionError, got %v", err)
	}

	// Above the entry sequence but below the open exit's own reading: the
	// vehicle cannot return with fewer kilometers than it left with.
	if err := checkOdometer(history, "ABC123", DirectionEntry, 180); !errors.As(err, &regression) {
		t.Errorf("entry below the open exit reading: want OdometerRegressionError, got %v", err)
	}
}

func TestCheckOdometerMalformedCellsReadAsZero(t *testing.T) {
	history := []historyRecord{
		// cellFloat already turned the bad cell into zero upstream.
		record(DirectionExit, 0, 0, 2),
	}
	if err := checkOdometer(history, "ABC123", DirectionExit, 5); err != nil {
		t.Errorf("a historic bad cell must not block new inspections: %v", err)
	}
}

func TestValidateOdometerAgainstStore(t *testing.T) {
	store, fake := newTestStore()
	seedInspectionRow(fake, 2, "01/03/2026, 08:00:00", "ABC123", "(SU01) Panamá", DirectionExit, "100", "")
	seedInspectionRow(fake, 3, "01/03/2026, 09:00:00", "XYZ789", "(SU01) Panamá", DirectionExit, "900", "")

	if err := store.ValidateOdometer(context.Background(), "abc123", DirectionExit, 120); err != nil {
		t.Errorf("ValidateOdometer: %v", err)
	}

	err := store.ValidateOdometer(context.Background(), "abc123", DirectionExit, 90)
	var regression *OdometerRegressionError
	if !errors.As(err, &regression) {
		t.Fatalf("want OdometerRegressionError, got %v", err)
	}
	if regression.Plate != "ABC123" {
		t.Errorf("error plate = %q, want ABC123", regression.Plate)
	}
	if regression.LastKnown != 100 {
		t.Errorf("other plates leaked into the history: LastKnown = %v", regression.LastKnown)
	}
}
