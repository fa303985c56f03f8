package Models

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vehicle is the fleet registry record behind a plate. TireCount drives the
// inspection form layout: 4, 6 or 10 wheel positions.
type Vehicle struct {
	gorm.Model
	Plate       string `json:"plate" gorm:"uniqueIndex"`
	VehicleType string `json:"vehicle_type"`
	Branch      string `json:"branch"`
	TireCount   int    `json:"tire_count"`
	Active      bool   `json:"active" gorm:"default:true"`
}

// Branch is one office with its own consecutive number column and report
// distribution list. Emails holds the recipients as a JSON array.
type Branch struct {
	gorm.Model
	Name   string         `json:"name" gorm:"uniqueIndex"`
	Code   string         `json:"code"`
	Emails datatypes.JSON `json:"emails"`
}

// RecipientList decodes the stored JSON array. A branch with a broken list
// just gets no mail, reports still upload.
func (b *Branch) RecipientList() []string {
	var emails []string
	if err := json.Unmarshal(b.Emails, &emails); err != nil {
		return nil
	}
	return emails
}

func (b *Branch) SetRecipients(emails []string) error {
	encoded, err := json.Marshal(emails)
	if err != nil {
		return err
	}
	b.Emails = encoded
	return nil
}

// NormalizeBranchName makes branch matching tolerant of the spacing and
// casing differences between the sheet headers and the registry.
func NormalizeBranchName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
