package Models

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InspectionLog is the local audit trail of every inspection the engine
// persisted to the spreadsheet. The sheet stays the source of truth, this
// table exists so operators can answer "what happened" without sheet access.
type InspectionLog struct {
	gorm.Model
	Plate       string         `json:"plate" gorm:"index"`
	Direction   string         `json:"direction"`
	Branch      string         `json:"branch"`
	RowIndex    int            `json:"row_index"`
	Odometer    float64        `json:"odometer"`
	Consecutive int            `json:"consecutive"`
	ReportFile  string         `json:"report_file"`
	ReportError string         `json:"report_error"`
	Payload     datatypes.JSON `json:"payload"`
	UserID      uint           `json:"user_id"`
}

// RecordInspection writes one audit row. Audit failures are logged and
// swallowed, they must never fail the inspection that already committed.
func RecordInspection(entry InspectionLog, payload interface{}) {
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err == nil {
			entry.Payload = encoded
		}
	}
	if err := DB.Create(&entry).Error; err != nil {
		log.Printf("Could not record inspection audit for %s: %v", entry.Plate, err)
	}
}
