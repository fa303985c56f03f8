package Inspections

import "fmt"

// DataAccessError wraps any failure talking to the spreadsheet store. It is
// retryable and must never be confused with a user input error.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access failed during %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// InvalidTireConfigurationError reports a tire submission that contradicts
// the vehicle's declared wheel configuration.
type InvalidTireConfigurationError struct {
	Configuration TireConfiguration
	InvalidIDs    []int
	DuplicateID   int
	Reason        string
}

func (e *InvalidTireConfigurationError) Error() string {
	if e.DuplicateID != 0 {
		return fmt.Sprintf("tire position %d submitted more than once", e.DuplicateID)
	}
	if len(e.InvalidIDs) > 0 {
		return fmt.Sprintf("configuration of %d tires does not allow IDs %v", int(e.Configuration), e.InvalidIDs)
	}
	return e.Reason
}

// OdometerRegressionError rejects a reading that is not strictly above the
// last one recorded for the same plate and direction. LastKnown lets the
// caller tell the driver what the vehicle last reported.
type OdometerRegressionError struct {
	Plate     string
	Direction Direction
	LastKnown float64
	Candidate float64
}

func (e *OdometerRegressionError) Error() string {
	return fmt.Sprintf("odometer %.0f for plate %s is not above the last %s reading %.0f",
		e.Candidate, e.Plate, e.Direction, e.LastKnown)
}

// NoOpenExitError means an entry was submitted for a plate whose latest
// record is not an open exit. The driver has to register the exit first.
type NoOpenExitError struct {
	Plate string
}

func (e *NoOpenExitError) Error() string {
	return fmt.Sprintf("plate %s has no open exit inspection", e.Plate)
}

// ConcurrentModificationError means another writer completed the same open
// exit row between our resolve and our update.
type ConcurrentModificationError struct {
	Plate    string
	RowIndex int
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("row %d for plate %s was modified by another submission", e.RowIndex, e.Plate)
}

// ConsecutiveNumberConflictError is raised after the bounded retry budget
// for the counter column is exhausted.
type ConsecutiveNumberConflictError struct {
	Branch   string
	Attempts int
}

func (e *ConsecutiveNumberConflictError) Error() string {
	return fmt.Sprintf("could not issue a consecutive number for %s after %d attempts", e.Branch, e.Attempts)
}

// UnknownBranchError means the branch has no column in the counter sheet
// header. This is a configuration problem, not a retryable store failure.
type UnknownBranchError struct {
	Branch string
}

func (e *UnknownBranchError) Error() string {
	return fmt.Sprintf("branch %s not found in the consecutive number sheet header", e.Branch)
}
