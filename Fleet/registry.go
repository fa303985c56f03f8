package Fleet

import (
	"log"
	"strings"

	"gorm.io/gorm"

	"Kestrel/Inspections"
	"Kestrel/Models"
)

// Registry answers vehicle questions from the local database: which tire
// configuration a plate carries and which inboxes a branch's reports go to.
// It satisfies Inspections.FleetRegistry.
type Registry struct {
	DB *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{DB: db}
}

// TireConfiguration resolves the plate's wheel layout. Unknown plates and
// unknown counts default to four wheels; an exit inspection must never be
// blocked because the registry is behind.
func (r *Registry) TireConfiguration(plate string) Inspections.TireConfiguration {
	var vehicle Models.Vehicle
	err := r.DB.Where("plate = ?", Inspections.NormalizePlate(plate)).First(&vehicle).Error
	if err != nil {
		return Inspections.ConfigFour
	}

	config, err := Inspections.ConfigurationForCount(vehicle.TireCount)
	if err != nil {
		return configForVehicleType(vehicle.VehicleType)
	}
	return config
}

// configForVehicleType is the fallback when a registry row has no usable
// tire count, based on the type names the plate sheet uses.
func configForVehicleType(vehicleType string) Inspections.TireConfiguration {
	switch {
	case strings.Contains(strings.ToLower(vehicleType), "articulado"):
		return Inspections.ConfigTen
	case strings.Contains(strings.ToLower(vehicleType), "camión"),
		strings.Contains(strings.ToLower(vehicleType), "camion"):
		return Inspections.ConfigSix
	}
	return Inspections.ConfigFour
}

// BranchRecipients returns the report distribution list for a branch name
// as it appears on inspection rows.
func (r *Registry) BranchRecipients(branch string) []string {
	var branches []Models.Branch
	if err := r.DB.Find(&branches).Error; err != nil {
		log.Printf("Could not load branches: %v", err)
		return nil
	}

	wanted := Models.NormalizeBranchName(branch)
	for _, candidate := range branches {
		if Models.NormalizeBranchName(candidate.Name) == wanted {
			return candidate.RecipientList()
		}
	}
	return nil
}

// VehicleByPlate exposes the raw registry row for the API layer.
func (r *Registry) VehicleByPlate(plate string) (Models.Vehicle, error) {
	var vehicle Models.Vehicle
	err := r.DB.Where("plate = ?", Inspections.NormalizePlate(plate)).First(&vehicle).Error
	return vehicle, err
}
