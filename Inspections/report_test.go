package Inspections

import (
	"testing"
	"time"
)

func TestDateCode(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"05/03/2026, 14:30:05", "03052026"},
		{"5/3/26, 14:30:05", "03052026"},
		{"05/03/26", "03052026"},
		{"garbage", "ND"},
		{"", "ND"},
		{"05/03/123, 14:30:05", "ND"},
	}
	for _, tc := range cases {
		if got := dateCode(tc.raw); got != tc.want {
			t.Errorf("dateCode(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestBranchCode(t *testing.T) {
	cases := []struct {
		branch string
		want   string
	}{
		{"(SU02) Chiriquí", "SU02"},
		{"( SU05 ) Colón", "SU05"},
		{"Casa Matriz", "ND"},
		{"()", "ND"},
		{"", "ND"},
	}
	for _, tc := range cases {
		payload := ReportPayload{Branch: tc.branch}
		if got := payload.BranchCode(); got != tc.want {
			t.Errorf("BranchCode(%q) = %q, want %q", tc.branch, got, tc.want)
		}
	}
}

func TestFileName(t *testing.T) {
	payload := ReportPayload{
		DateCode:    "03052026",
		Branch:      "(SU02) Chiriquí",
		Plate:       "ABC123",
		Consecutive: 42,
	}
	want := "03052026-SU02-ABC123-R06-PT-19-Revisión de Vehículos-42.pdf"
	if got := payload.FileName(); got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestParseReportRowRoundTrip(t *testing.T) {
	sub := exitSubmission("ABC123", 100)
	normalized, err := NormalizeTires(sub.Tires, ConfigFour)
	if err != nil {
		t.Fatalf("NormalizeTires: %v", err)
	}
	stamped := time.Date(2026, 3, 5, 14, 30, 5, 0, panamaTime)
	row := buildExitRow(sub, TireRowSlots(normalized), stamped)
	if len(row) != rowWidth {
		t.Fatalf("exit row spans %d cells, want %d", len(row), rowWidth)
	}

	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = v.(string)
	}
	// The entry path fills these after the fact.
	cells[colDirection] = string(DirectionEntry)
	cells[colEntryTime] = "18:45:00"
	cells[colEntryOdo] = "150"
	cells[colRevisionStart] = "combustible"
	cells[colRevisionStart+1] = "sí"

	payload := parseReportRow(cells, 7)

	if payload.RowIndex != 7 {
		t.Errorf("RowIndex = %d, want 7", payload.RowIndex)
	}
	if payload.DateCode != "03052026" {
		t.Errorf("DateCode = %q, want 03052026", payload.DateCode)
	}
	if payload.Plate != "ABC123" || payload.Driver != "J. Pérez" {
		t.Errorf("plate/driver = %q/%q", payload.Plate, payload.Driver)
	}
	if payload.ExitOdometer != "100" || payload.EntryOdometer != "150" {
		t.Errorf("odometers = %q/%q, want 100/150", payload.ExitOdometer, payload.EntryOdometer)
	}
	if payload.ExitTime != "14:30:05" || payload.EntryTime != "18:45:00" {
		t.Errorf("times = %q/%q", payload.ExitTime, payload.EntryTime)
	}

	if payload.Tires[0].FP != "√" || payload.Tires[0].PE != "√" {
		t.Errorf("tire 1 marks = %+v", payload.Tires[0])
	}
	if payload.Tires[6].PA != "√" || payload.Tires[6].Wear != "x" {
		t.Errorf("tire 7 marks = %+v", payload.Tires[6])
	}
	if payload.Tires[1].FP != "" {
		t.Errorf("omitted tire 2 marks = %+v", payload.Tires[1])
	}
	if payload.TireRemarks != "llanta 7 gastada" {
		t.Errorf("tire remarks = %q", payload.TireRemarks)
	}

	if payload.Fluids[0].Required != "√" || payload.Fluids[0].Full != "" {
		t.Errorf("fluid 1 = %+v", payload.Fluids[0])
	}
	if payload.Visuals[0] != "sí" {
		t.Errorf("visual 1 = %q, want sí", payload.Visuals[0])
	}
	if payload.Lights[0] != "sí" {
		t.Errorf("light 1 = %q, want sí", payload.Lights[0])
	}
	// Unsubmitted blocks read as their blanks, not as garbage.
	if payload.Supplies[0] != "" {
		t.Errorf("supply 1 = %q, want empty", payload.Supplies[0])
	}

	if payload.Damages[0].Scratches != "X" || payload.Damages[0].Dents != "no" {
		t.Errorf("damage 1 = %+v", payload.Damages[0])
	}

	if payload.Revisions[0] != "sí" {
		t.Errorf("revision 1 = %q, want sí", payload.Revisions[0])
	}
	if payload.Revisions[5] != "N/A" {
		t.Errorf("unfilled revision = %q, want N/A", payload.Revisions[5])
	}
}
