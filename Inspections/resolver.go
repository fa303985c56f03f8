package Inspections

import (
	"context"
	"time"
)

// PlateState is the resolved position of a plate in the exit/entry cycle.
type PlateState struct {
	Plate             string
	RequiredDirection Direction
	// RowIndex is the sheet row of the open exit when RequiredDirection is
	// DirectionEntry, zero otherwise.
	RowIndex         int
	LastTimestamp    time.Time
	LastExitOdometer float64
	NewPlate         bool
}

// ResolvePlateState decides whether the plate's next inspection must be an
// exit or an entry. A plate with no usable history is a new plate and
// starts with an exit, that is a normal state, not an error.
func (s *Store) ResolvePlateState(ctx context.Context, plate string) (PlateState, error) {
	state := PlateState{Plate: NormalizePlate(plate)}

	records, err := s.fetchHistory(ctx, plate)
	if err != nil {
		return PlateState{}, err
	}

	if len(records) == 0 {
		state.RequiredDirection = DirectionExit
		state.NewPlate = true
		return state, nil
	}

	latest := records[0]
	state.LastTimestamp = latest.timestamp
	state.LastExitOdometer = latest.exitOdometer

	if latest.direction == DirectionExit {
		// Open exit, the vehicle is out and has to check back in.
		state.RequiredDirection = DirectionEntry
		state.RowIndex = latest.rowIndex
		return state, nil
	}

	state.RequiredDirection = DirectionExit
	return state, nil
}
