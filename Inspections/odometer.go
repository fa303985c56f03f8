package Inspections

import "context"

// ValidateOdometer enforces monotonic odometer growth per plate and
// direction. Exit and entry readings live in different columns of the same
// row and advance as two separate sequences: the truck leaves with one
// reading and returns with another, so the exit sequence and the entry
// sequence are each strictly increasing on their own.
//
// A candidate equal to the last known reading is rejected too, a vehicle
// cannot return with a frozen odometer. Malformed history cells read as
// zero and never block a submission. On top of the per-direction sequence,
// an entry reading must not be below the exit reading of the row it
// completes.
func (s *Store) ValidateOdometer(ctx context.Context, plate string, direction Direction, candidate float64) error {
	records, err := s.fetchHistory(ctx, plate)
	if err != nil {
		return err
	}
	return checkOdometer(records, NormalizePlate(plate), direction, candidate)
}

// checkOdometer is the pure part of the validation, separated so it can be
// exercised against synthetic histories.
func checkOdometer(records []historyRecord, plate string, direction Direction, candidate float64) error {
	var lastKnown float64
	for _, record := range records {
		reading := record.exitOdometer
		if direction == DirectionEntry {
			reading = record.entryOdometer
		}
		if reading > lastKnown {
			lastKnown = reading
		}
	}

	if candidate <= lastKnown {
		return &OdometerRegressionError{
			Plate:     plate,
			Direction: direction,
			LastKnown: lastKnown,
			Candidate: candidate,
		}
	}

	if direction == DirectionEntry {
		// The entry completes the most recent open exit row; the vehicle
		// cannot come back with fewer kilometers than it left with.
		for _, record := range records {
			if record.direction != DirectionExit {
				continue
			}
			if candidate < record.exitOdometer {
				return &OdometerRegressionError{
					Plate:     plate,
					Direction: direction,
					LastKnown: record.exitOdometer,
					Candidate: candidate,
				}
			}
			break
		}
	}

	return nil
}
