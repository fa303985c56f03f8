package Inspections

import (
	"errors"
	"testing"
)

func TestConfigurationForCount(t *testing.T) {
	cases := []struct {
		count int
		want  TireConfiguration
		valid bool
	}{
		{0, ConfigFour, true},
		{4, ConfigFour, true},
		{6, ConfigSix, true},
		{10, ConfigTen, true},
		{5, 0, false},
		{8, 0, false},
		{-4, 0, false},
	}
	for _, tc := range cases {
		got, err := ConfigurationForCount(tc.count)
		if tc.valid {
			if err != nil {
				t.Errorf("count %d: unexpected error %v", tc.count, err)
			}
			if got != tc.want {
				t.Errorf("count %d: got %d, want %d", tc.count, got, tc.want)
			}
			continue
		}
		var invalid *InvalidTireConfigurationError
		if !errors.As(err, &invalid) {
			t.Errorf("count %d: want InvalidTireConfigurationError, got %v", tc.count, err)
		}
	}
}

func TestNormalizeTiresCanonicalOrder(t *testing.T) {
	// Shuffled submission must come back in canonical position order.
	submitted := []TireCheck{
		{ID: 7, FP: true},
		{ID: 1, PE: true},
		{ID: 5, PA: true},
		{ID: 2, Desgaste: true},
	}

	normalized, err := NormalizeTires(submitted, ConfigFour)
	if err != nil {
		t.Fatalf("NormalizeTires: %v", err)
	}
	if len(normalized) != 4 {
		t.Fatalf("got %d slots, want 4", len(normalized))
	}
	for i, wantID := range []int{1, 2, 5, 7} {
		if normalized[i] == nil {
			t.Fatalf("slot %d is nil, want position %d", i, wantID)
		}
		if normalized[i].ID != wantID {
			t.Errorf("slot %d holds position %d, want %d", i, normalized[i].ID, wantID)
		}
	}
	if !normalized[0].PE || !normalized[3].FP {
		t.Error("tire payloads did not follow their position IDs")
	}
}

func TestNormalizeTiresOmittedPositions(t *testing.T) {
	normalized, err := NormalizeTires([]TireCheck{{ID: 5, FP: true}}, ConfigSix)
	if err != nil {
		t.Fatalf("NormalizeTires: %v", err)
	}
	if len(normalized) != 6 {
		t.Fatalf("got %d slots, want 6", len(normalized))
	}
	for i, wantID := range []int{1, 2, 5, 6, 7, 8} {
		if wantID == 5 {
			if normalized[i] == nil || !normalized[i].FP {
				t.Errorf("slot %d should hold the submitted position 5", i)
			}
			continue
		}
		if normalized[i] != nil {
			t.Errorf("slot %d for omitted position %d should be nil", i, wantID)
		}
	}
}

func TestNormalizeTiresRejectsForeignPositions(t *testing.T) {
	_, err := NormalizeTires([]TireCheck{{ID: 1}, {ID: 9}}, ConfigFour)
	var invalid *InvalidTireConfigurationError
	if !errors.As(err, &invalid) {
		t.Fatalf("want InvalidTireConfigurationError, got %v", err)
	}
	if len(invalid.InvalidIDs) != 1 || invalid.InvalidIDs[0] != 9 {
		t.Errorf("InvalidIDs = %v, want [9]", invalid.InvalidIDs)
	}
}

func TestNormalizeTiresRejectsDuplicates(t *testing.T) {
	_, err := NormalizeTires([]TireCheck{{ID: 5}, {ID: 5}}, ConfigTen)
	var invalid *InvalidTireConfigurationError
	if !errors.As(err, &invalid) {
		t.Fatalf("want InvalidTireConfigurationError, got %v", err)
	}
	if invalid.DuplicateID != 5 {
		t.Errorf("DuplicateID = %d, want 5", invalid.DuplicateID)
	}
}

func TestNormalizeTiresExtraCountWithinSet(t *testing.T) {
	// Five tires on a six wheel truck is fine as long as every position
	// belongs to the configuration.
	submitted := []TireCheck{{ID: 1}, {ID: 2}, {ID: 5}, {ID: 6}, {ID: 8}}
	normalized, err := NormalizeTires(submitted, ConfigSix)
	if err != nil {
		t.Fatalf("NormalizeTires: %v", err)
	}
	filled := 0
	for _, tire := range normalized {
		if tire != nil {
			filled++
		}
	}
	if filled != 5 {
		t.Errorf("got %d filled slots, want 5", filled)
	}
}

func TestTireRowSlots(t *testing.T) {
	normalized, err := NormalizeTires([]TireCheck{{ID: 7, FP: true}, {ID: 1, PA: true}}, ConfigFour)
	if err != nil {
		t.Fatalf("NormalizeTires: %v", err)
	}
	slots := TireRowSlots(normalized)

	if slots[0] == nil || !slots[0].PA {
		t.Error("position 1 should land on slot 0")
	}
	if slots[6] == nil || !slots[6].FP {
		t.Error("position 7 should land on slot 6")
	}
	for _, i := range []int{1, 2, 3, 4, 5, 7, 8, 9} {
		if slots[i] != nil {
			t.Errorf("slot %d should be empty", i)
		}
	}
}
