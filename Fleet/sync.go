package Fleet

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"Kestrel/Inspections"
	"Kestrel/Models"
	"Kestrel/Sheets"
)

// plateListRange covers plate, vehicle type, branch and tire count on the
// master plate sheet.
const plateListRange = "Lista de Placas!A2:D"

// PlateSync keeps the local vehicle registry in step with the master plate
// spreadsheet the branches maintain.
type PlateSync struct {
	Values        Sheets.Values
	DB            *gorm.DB
	SpreadsheetID string

	scheduler *cron.Cron
	jobID     cron.EntryID
}

func NewPlateSync(values Sheets.Values, db *gorm.DB) (*PlateSync, error) {
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEETIDPLACAS")
	if spreadsheetID == "" {
		return nil, fmt.Errorf("missing GOOGLE_SPREADSHEETIDPLACAS")
	}
	return &PlateSync{
		Values:        values,
		DB:            db,
		SpreadsheetID: spreadsheetID,
		scheduler:     cron.New(),
	}, nil
}

// Start schedules the sync every 15 minutes and runs one pass immediately
// so a fresh deploy has a registry before the first inspection.
func (s *PlateSync) Start() error {
	var err error
	s.jobID, err = s.scheduler.AddFunc("*/15 * * * *", func() {
		if err := s.RunOnce(context.Background()); err != nil {
			log.Printf("Plate sync failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling plate sync: %w", err)
	}

	s.scheduler.Start()
	if err := s.RunOnce(context.Background()); err != nil {
		log.Printf("Initial plate sync failed: %v", err)
	}
	return nil
}

func (s *PlateSync) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
		log.Println("Plate sync scheduler stopped")
	}
}

// RunOnce pulls the plate list and upserts every row. Vehicles that left
// the sheet are deactivated, not deleted, so their inspection history keeps
// resolving.
func (s *PlateSync) RunOnce(ctx context.Context) error {
	rows, err := s.Values.GetRows(ctx, s.SpreadsheetID, plateListRange)
	if err != nil {
		return fmt.Errorf("read plate list: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	synced := 0
	for _, row := range rows {
		plate := Inspections.NormalizePlate(cellAt(row, 0))
		if plate == "" {
			continue
		}
		seen[plate] = true

		vehicle := Models.Vehicle{
			Plate:       plate,
			VehicleType: cellAt(row, 1),
			Branch:      cellAt(row, 2),
			TireCount:   parseTireCount(cellAt(row, 3)),
			Active:      true,
		}

		var existing Models.Vehicle
		err := s.DB.Where("plate = ?", plate).First(&existing).Error
		if err != nil {
			if err := s.DB.Create(&vehicle).Error; err != nil {
				log.Printf("Could not create vehicle %s: %v", plate, err)
				continue
			}
			synced++
			continue
		}

		existing.VehicleType = vehicle.VehicleType
		existing.Branch = vehicle.Branch
		existing.TireCount = vehicle.TireCount
		existing.Active = true
		if err := s.DB.Save(&existing).Error; err != nil {
			log.Printf("Could not update vehicle %s: %v", plate, err)
			continue
		}
		synced++
	}

	var active []Models.Vehicle
	if err := s.DB.Where("active = ?", true).Find(&active).Error; err == nil {
		for _, vehicle := range active {
			if !seen[vehicle.Plate] {
				vehicle.Active = false
				if err := s.DB.Save(&vehicle).Error; err != nil {
					log.Printf("Could not deactivate vehicle %s: %v", vehicle.Plate, err)
				}
			}
		}
	}

	log.Printf("Plate sync completed, %d vehicles synced", synced)
	return nil
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseTireCount tolerates the free-text the sheet holds. Anything that is
// not a valid configuration reads as zero and falls back to the vehicle
// type heuristic.
func parseTireCount(raw string) int {
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	if _, err := Inspections.ConfigurationForCount(count); err != nil {
		return 0
	}
	return count
}
