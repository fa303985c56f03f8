package Inspections

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"Kestrel/Sheets"
)

const (
	sheetName        = "Hoja 1"
	historyReadRange = sheetName + "!A2:GH"
	appendRange      = sheetName + "!A2"
	counterHeaderRow = sheetName + "!A1:Z1"
)

// Store gives the inspection engine its view of the spreadsheet backend.
// The backend has no transactions and no row locks, every write below is
// last-write-wins, which is why the entry update and the consecutive
// counter re-check what they wrote.
type Store struct {
	Values          Sheets.Values
	InspectionSheet string
	CounterSheet    string
}

// NewStoreFromEnv wires a Store against the spreadsheet IDs in the
// environment.
func NewStoreFromEnv(values Sheets.Values) (*Store, error) {
	inspection := os.Getenv("GOOGLE_INSPECCIONSALIDAS")
	counter := os.Getenv("GOOGLE_NUMEROS_CONSECUTIVOS")
	if inspection == "" || counter == "" {
		return nil, fmt.Errorf("missing GOOGLE_INSPECCIONSALIDAS or GOOGLE_NUMEROS_CONSECUTIVOS")
	}
	return &Store{Values: values, InspectionSheet: inspection, CounterSheet: counter}, nil
}

// historyRecord is one parsed inspection row of a plate's history.
type historyRecord struct {
	rowIndex      int // 1 based sheet row
	timestamp     time.Time
	direction     Direction
	exitOdometer  float64
	entryOdometer float64
}

// fetchHistory returns every parseable record for the plate, most recent
// first. Rows with malformed timestamps are logged and skipped, they must
// never crash resolution or count as most recent.
func (s *Store) fetchHistory(ctx context.Context, plate string) ([]historyRecord, error) {
	rows, err := s.Values.GetRows(ctx, s.InspectionSheet, historyReadRange)
	if err != nil {
		return nil, &DataAccessError{Op: "fetch inspection history", Err: err}
	}

	normalized := NormalizePlate(plate)
	var records []historyRecord
	for i, row := range rows {
		if NormalizePlate(cell(row, colPlate)) != normalized {
			continue
		}
		stamp, ok := ParseTimestamp(cell(row, colTimestamp))
		if !ok {
			log.Printf("Skipping row %d for plate %s: malformed timestamp %q", i+2, normalized, cell(row, colTimestamp))
			continue
		}
		records = append(records, historyRecord{
			rowIndex:      i + 2, // data starts at sheet row 2
			timestamp:     stamp,
			direction:     Direction(cell(row, colDirection)),
			exitOdometer:  cellFloat(row, colExitOdo),
			entryOdometer: cellFloat(row, colEntryOdo),
		})
	}

	sort.Slice(records, func(a, b int) bool {
		return records[a].timestamp.After(records[b].timestamp)
	})
	return records, nil
}

// readRow fetches a single full inspection row.
func (s *Store) readRow(ctx context.Context, rowIndex int) ([]string, error) {
	readRange := fmt.Sprintf("%s!A%d:GH%d", sheetName, rowIndex, rowIndex)
	rows, err := s.Values.GetRows(ctx, s.InspectionSheet, readRange)
	if err != nil {
		return nil, &DataAccessError{Op: "read inspection row", Err: err}
	}
	if len(rows) == 0 {
		return nil, &DataAccessError{Op: "read inspection row", Err: fmt.Errorf("row %d is empty", rowIndex)}
	}
	return rows[0], nil
}
