package Inspections

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"Kestrel/Sheets"
)

// fakeValues is an in-memory spreadsheet with the same last-write-wins,
// no-transaction semantics as the real backend. Hooks let tests interleave
// a competing writer between the read and the write of an operation.
type fakeValues struct {
	mu     sync.Mutex
	sheets map[string]*fakeGrid

	getErr       error
	beforeAppend func()
	afterGet     func(readRange string)
}

type fakeGrid struct {
	rows [][]string
}

func newFakeValues() *fakeValues {
	return &fakeValues{sheets: map[string]*fakeGrid{}}
}

func (f *fakeValues) grid(sheetID string) *fakeGrid {
	g, ok := f.sheets[sheetID]
	if !ok {
		g = &fakeGrid{}
		f.sheets[sheetID] = g
	}
	return g
}

// colIndex turns A into 0, Z into 25, AA into 26 and so on.
func colIndex(letters string) int {
	index := 0
	for _, r := range letters {
		index = index*26 + int(r-'A') + 1
	}
	return index - 1
}

// parseA1 splits a range like "Hoja 1!FG12:GH" into its parts. Row 0 means
// open ended, endCol -1 means unspecified.
func parseA1(a1 string) (startCol, startRow, endCol, endRow int) {
	ref := a1
	if i := strings.IndexByte(ref, '!'); i >= 0 {
		ref = ref[i+1:]
	}

	parseCell := func(cellRef string) (int, int) {
		letters := ""
		digits := ""
		for _, r := range cellRef {
			if r >= 'A' && r <= 'Z' {
				letters += string(r)
			} else {
				digits += string(r)
			}
		}
		col := -1
		if letters != "" {
			col = colIndex(letters)
		}
		row := 0
		fmt.Sscanf(digits, "%d", &row)
		return col, row
	}

	parts := strings.SplitN(ref, ":", 2)
	startCol, startRow = parseCell(parts[0])
	endCol, endRow = startCol, startRow
	if len(parts) == 2 {
		endCol, endRow = parseCell(parts[1])
	}
	return
}

func (g *fakeGrid) ensure(row, col int) {
	for len(g.rows) < row {
		g.rows = append(g.rows, nil)
	}
	for len(g.rows[row-1]) <= col {
		g.rows[row-1] = append(g.rows[row-1], "")
	}
}

func (g *fakeGrid) set(row, col int, value string) {
	g.ensure(row, col)
	g.rows[row-1][col] = value
}

func (g *fakeGrid) get(row, col int) string {
	if row-1 >= len(g.rows) || row < 1 {
		return ""
	}
	if col >= len(g.rows[row-1]) {
		return ""
	}
	return g.rows[row-1][col]
}

func (f *fakeValues) GetRows(ctx context.Context, sheetID, readRange string) ([][]string, error) {
	f.mu.Lock()
	if f.getErr != nil {
		err := f.getErr
		f.mu.Unlock()
		return nil, err
	}

	g := f.grid(sheetID)
	startCol, startRow, endCol, endRow := parseA1(readRange)
	if endRow == 0 {
		endRow = len(g.rows)
	}

	var out [][]string
	for row := startRow; row <= endRow; row++ {
		if row-1 >= len(g.rows) {
			break
		}
		var cells []string
		for col := startCol; col <= endCol; col++ {
			cells = append(cells, g.get(row, col))
		}
		out = append(out, cells)
	}
	f.mu.Unlock()

	if f.afterGet != nil {
		f.afterGet(readRange)
	}
	return out, nil
}

func (f *fakeValues) AppendRow(ctx context.Context, sheetID, appendRange string, row []interface{}) (int, error) {
	if f.beforeAppend != nil {
		f.beforeAppend()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	g := f.grid(sheetID)
	startCol, startRow, _, _ := parseA1(appendRange)

	// Like the real append: land on the first row at or below the range
	// start whose target columns are all empty.
	target := startRow
	for sheetRow := startRow; sheetRow-1 < len(g.rows); sheetRow++ {
		occupied := false
		for i := range row {
			if g.get(sheetRow, startCol+i) != "" {
				occupied = true
				break
			}
		}
		if occupied {
			target = sheetRow + 1
		}
	}

	for i, value := range row {
		g.set(target, startCol+i, fmt.Sprintf("%v", value))
	}
	return target, nil
}

func (f *fakeValues) UpdateCell(ctx context.Context, sheetID, cellRange string, value interface{}) error {
	return f.UpdateRange(ctx, sheetID, cellRange, [][]interface{}{{value}})
}

func (f *fakeValues) UpdateRange(ctx context.Context, sheetID, updateRange string, values [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	g := f.grid(sheetID)
	startCol, startRow, _, _ := parseA1(updateRange)
	for r, rowValues := range values {
		for c, value := range rowValues {
			g.set(startRow+r, startCol+c, fmt.Sprintf("%v", value))
		}
	}
	return nil
}

func (f *fakeValues) BatchUpdate(ctx context.Context, sheetID string, data []Sheets.ValueRange) error {
	for _, vr := range data {
		if err := f.UpdateRange(ctx, sheetID, vr.Range, vr.Values); err != nil {
			return err
		}
	}
	return nil
}

const (
	testInspectionSheet = "inspecciones"
	testCounterSheet    = "consecutivos"
)

func newTestStore() (*Store, *fakeValues) {
	fake := newFakeValues()
	store := &Store{
		Values:          fake,
		InspectionSheet: testInspectionSheet,
		CounterSheet:    testCounterSheet,
	}
	return store, fake
}

// seedCounterHeader writes the branch names on row 1 of the counter sheet.
func seedCounterHeader(fake *fakeValues, branches ...string) {
	g := fake.grid(testCounterSheet)
	for i, branch := range branches {
		g.set(1, i, branch)
	}
}

// seedInspectionRow writes a minimal history row at the given sheet row.
func seedInspectionRow(fake *fakeValues, sheetRow int, timestamp, plate, branch string, direction Direction, exitOdo, entryOdo string) {
	g := fake.grid(testInspectionSheet)
	g.set(sheetRow, colTimestamp, timestamp)
	g.set(sheetRow, colPlate, plate)
	g.set(sheetRow, colBranch, branch)
	g.set(sheetRow, colDirection, string(direction))
	g.set(sheetRow, colExitOdo, exitOdo)
	if entryOdo != "" {
		g.set(sheetRow, colEntryOdo, entryOdo)
	}
}
