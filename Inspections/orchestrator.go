package Inspections

import (
	"context"
	"fmt"
	"log"
	"time"
)

// FleetRegistry resolves a plate's declared tire configuration. Backed by
// the Fleet package in production.
type FleetRegistry interface {
	TireConfiguration(plate string) TireConfiguration
}

// ReportDispatcher receives the assembled payload of a completed entry and
// runs the export, upload and email steps. A dispatch failure never rolls
// back the persisted inspection.
type ReportDispatcher interface {
	Dispatch(ctx context.Context, payload ReportPayload) error
}

// Orchestrator runs the exit and entry inspection lifecycles end to end.
type Orchestrator struct {
	Store   *Store
	Fleet   FleetRegistry
	Reports ReportDispatcher

	// Clock is swappable for tests.
	Clock func() time.Time
}

func NewOrchestrator(store *Store, fleet FleetRegistry, reports ReportDispatcher) *Orchestrator {
	return &Orchestrator{Store: store, Fleet: fleet, Reports: reports, Clock: Now}
}

// ExitResult reports a persisted check-out inspection.
type ExitResult struct {
	RowIndex  int
	Timestamp time.Time
}

// EntryResult reports a completed check-in inspection. ReportErr carries a
// pipeline failure that happened after the inspection was already
// committed; the inspection itself is complete.
type EntryResult struct {
	RowIndex     int
	RowCommitted bool
	Consecutive  int
	Payload      ReportPayload
	ReportErr    error
}

// ProcessExit normalizes, validates and persists a check-out inspection.
// The row append is the single commit point: any failure before it leaves
// nothing behind.
func (o *Orchestrator) ProcessExit(ctx context.Context, sub ExitSubmission) (ExitResult, error) {
	config, err := o.tireConfiguration(sub.Plate, sub.TireCount)
	if err != nil {
		return ExitResult{}, err
	}

	normalized, err := NormalizeTires(sub.Tires, config)
	if err != nil {
		return ExitResult{}, err
	}

	if err := o.Store.ValidateOdometer(ctx, sub.Plate, DirectionExit, sub.Odometer); err != nil {
		return ExitResult{}, err
	}

	stamped := o.Clock()
	row := buildExitRow(sub, TireRowSlots(normalized), stamped)

	insertedRow, err := o.Store.Values.AppendRow(ctx, o.Store.InspectionSheet, appendRange, row)
	if err != nil {
		return ExitResult{}, &DataAccessError{Op: "append exit inspection", Err: err}
	}

	log.Printf("Exit inspection for %s persisted at row %d", NormalizePlate(sub.Plate), insertedRow)
	return ExitResult{RowIndex: insertedRow, Timestamp: stamped}, nil
}

// ProcessEntry completes the plate's open exit row. The direction cell is
// re-read immediately before the update so two racing entries cannot both
// complete the same row; the loser gets ConcurrentModificationError.
// Everything after the row commit (consecutive number, report pipeline) is
// surfaced but never undoes the commit.
func (o *Orchestrator) ProcessEntry(ctx context.Context, sub EntrySubmission) (EntryResult, error) {
	state, err := o.Store.ResolvePlateState(ctx, sub.Plate)
	if err != nil {
		return EntryResult{}, err
	}
	if state.RequiredDirection != DirectionEntry {
		return EntryResult{}, &NoOpenExitError{Plate: state.Plate}
	}
	if sub.RowIndex != 0 && sub.RowIndex != state.RowIndex {
		// The client resolved against an older open exit.
		return EntryResult{}, &ConcurrentModificationError{Plate: state.Plate, RowIndex: sub.RowIndex}
	}
	rowIndex := state.RowIndex

	if err := o.Store.ValidateOdometer(ctx, sub.Plate, DirectionEntry, sub.Odometer); err != nil {
		return EntryResult{}, err
	}

	if err := o.commitEntry(ctx, state, sub, rowIndex); err != nil {
		return EntryResult{}, err
	}
	result := EntryResult{RowIndex: rowIndex, RowCommitted: true}

	row, err := o.Store.readRow(ctx, rowIndex)
	if err != nil {
		return result, err
	}
	result.Payload = parseReportRow(row, rowIndex)

	number, err := o.Store.NextConsecutive(ctx, result.Payload.Branch)
	if err != nil {
		// The inspection is committed; the caller has to retry the number
		// issuance, not the whole entry.
		return result, err
	}
	result.Consecutive = number
	result.Payload.Consecutive = number

	if o.Reports != nil {
		if err := o.Reports.Dispatch(ctx, result.Payload); err != nil {
			log.Printf("Report pipeline failed for %s row %d: %v", state.Plate, rowIndex, err)
			result.ReportErr = err
		}
	}

	return result, nil
}

// commitEntry performs the conditional update of the open exit row. The
// direction flip to entrada is what closes the row, so it is written after
// the revision block.
func (o *Orchestrator) commitEntry(ctx context.Context, state PlateState, sub EntrySubmission, rowIndex int) error {
	directionRange := fmt.Sprintf("%s!G%d", sheetName, rowIndex)

	rows, err := o.Store.Values.GetRows(ctx, o.Store.InspectionSheet, directionRange)
	if err != nil {
		return &DataAccessError{Op: "re-check open exit", Err: err}
	}
	if len(rows) == 0 || Direction(cell(rows[0], 0)) != DirectionExit {
		return &ConcurrentModificationError{Plate: state.Plate, RowIndex: rowIndex}
	}

	revisionRange := fmt.Sprintf("%s!FG%d", sheetName, rowIndex)
	values := buildRevisionValues(sub.Revisions, sub.Remarks)
	if err := o.Store.Values.UpdateRange(ctx, o.Store.InspectionSheet, revisionRange, [][]interface{}{values}); err != nil {
		return &DataAccessError{Op: "write entry revisions", Err: err}
	}

	if err := o.Store.Values.UpdateCell(ctx, o.Store.InspectionSheet, directionRange, string(DirectionEntry)); err != nil {
		return &DataAccessError{Op: "close exit row", Err: err}
	}

	stamped := o.Clock()
	entryTimeRange := fmt.Sprintf("%s!GG%d", sheetName, rowIndex)
	if err := o.Store.Values.UpdateCell(ctx, o.Store.InspectionSheet, entryTimeRange, FormatClock(stamped)); err != nil {
		return &DataAccessError{Op: "write entry time", Err: err}
	}

	entryOdoRange := fmt.Sprintf("%s!GH%d", sheetName, rowIndex)
	if err := o.Store.Values.UpdateCell(ctx, o.Store.InspectionSheet, entryOdoRange, fmt.Sprintf("%v", sub.Odometer)); err != nil {
		return &DataAccessError{Op: "write entry odometer", Err: err}
	}

	log.Printf("Entry inspection for %s committed at row %d", state.Plate, rowIndex)
	return nil
}

// tireConfiguration picks the declared count when the submission carries
// one, otherwise the fleet registry's answer for the plate. Unknown plates
// default to four wheels.
func (o *Orchestrator) tireConfiguration(plate string, declared int) (TireConfiguration, error) {
	if declared != 0 {
		return ConfigurationForCount(declared)
	}
	if o.Fleet != nil {
		return o.Fleet.TireConfiguration(plate), nil
	}
	return ConfigFour, nil
}
