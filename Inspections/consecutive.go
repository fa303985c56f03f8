package Inspections

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/rand"

	"Kestrel/Sheets"
)

// maxConsecutiveAttempts bounds the optimistic retry loop. The counter
// column is shared by every concurrent entry completion of a branch, so a
// loser of the race retries with fresh reads instead of keeping a
// duplicate number.
const maxConsecutiveAttempts = 5

// NextConsecutive issues the branch's next document number. The backing
// store has no transactions, so the protocol is read-max, append, then
// re-read: the next number is max+1 (gaps in the column do not cause
// reuse), the append lands below the existing data, and the column is read
// back to detect a racing writer that claimed the same number. Exactly one
// racer keeps a contested number, the rest clear their cell and retry.
func (s *Store) NextConsecutive(ctx context.Context, branch string) (int, error) {
	column, err := s.locateBranchColumn(ctx, branch)
	if err != nil {
		return 0, err
	}

	columnRange := fmt.Sprintf("%s!%s2:%s", sheetName, column, column)

	for attempt := 1; attempt <= maxConsecutiveAttempts; attempt++ {
		values, err := s.Values.GetRows(ctx, s.CounterSheet, columnRange)
		if err != nil {
			return 0, &DataAccessError{Op: "read consecutive column", Err: err}
		}

		next := maxCounterValue(values) + 1

		insertedRow, err := s.Values.AppendRow(ctx, s.CounterSheet, columnRange, []interface{}{next})
		if err != nil {
			return 0, &DataAccessError{Op: "append consecutive number", Err: err}
		}

		winner, err := s.verifyConsecutive(ctx, columnRange, next, insertedRow)
		if err != nil {
			return 0, err
		}
		if winner {
			log.Printf("Issued consecutive number %d for branch %s", next, branch)
			return next, nil
		}

		// Lost the race: another caller claimed the same number first.
		// Clear our cell and try again from a fresh read.
		cellRange := fmt.Sprintf("%s!%s%d", sheetName, column, insertedRow)
		if err := s.Values.UpdateCell(ctx, s.CounterSheet, cellRange, ""); err != nil {
			return 0, &DataAccessError{Op: "clear contested consecutive cell", Err: err}
		}
		log.Printf("Consecutive number %d for branch %s contested, attempt %d/%d", next, branch, attempt, maxConsecutiveAttempts)
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)
	}

	return 0, &ConsecutiveNumberConflictError{Branch: branch, Attempts: maxConsecutiveAttempts}
}

// locateBranchColumn matches the branch against the counter sheet header
// row and returns the column letter.
func (s *Store) locateBranchColumn(ctx context.Context, branch string) (string, error) {
	rows, err := s.Values.GetRows(ctx, s.CounterSheet, counterHeaderRow)
	if err != nil {
		return "", &DataAccessError{Op: "read consecutive header", Err: err}
	}
	if len(rows) == 0 {
		return "", &UnknownBranchError{Branch: branch}
	}

	wanted := strings.ToLower(strings.TrimSpace(branch))
	for i, header := range rows[0] {
		if strings.ToLower(strings.TrimSpace(header)) == wanted {
			return Sheets.ColumnLetter(i), nil
		}
	}
	return "", &UnknownBranchError{Branch: branch}
}

// verifyConsecutive re-reads the column and reports whether our write at
// insertedRow is the first cell holding the number. Ties go to the lowest
// row so at most one racer wins a contested number.
func (s *Store) verifyConsecutive(ctx context.Context, columnRange string, number, insertedRow int) (bool, error) {
	values, err := s.Values.GetRows(ctx, s.CounterSheet, columnRange)
	if err != nil {
		return false, &DataAccessError{Op: "verify consecutive number", Err: err}
	}

	for i, row := range values {
		value, err := strconv.Atoi(strings.TrimSpace(cell(row, 0)))
		if err != nil || value != number {
			continue
		}
		// Row i of the column range is sheet row i+2.
		return i+2 == insertedRow, nil
	}

	// Our own write is gone, someone overwrote the cell.
	return false, nil
}

// maxCounterValue finds the highest issued number in the column. Blank and
// malformed cells are skipped so historic gaps never shrink the counter.
func maxCounterValue(values [][]string) int {
	max := 0
	for _, row := range values {
		value, err := strconv.Atoi(strings.TrimSpace(cell(row, 0)))
		if err != nil {
			continue
		}
		if value > max {
			max = value
		}
	}
	return max
}
