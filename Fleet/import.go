package Fleet

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"Kestrel/Inspections"
	"Kestrel/Models"
)

// ImportVehiclesFromExcel loads a branch-provided workbook into the
// registry. Column layout: plate, vehicle type, branch, tire count. Rows
// with no plate are skipped, the first row is treated as a header.
func ImportVehiclesFromExcel(db *gorm.DB, path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	imported := 0
	for i, row := range rows {
		if i == 0 {
			continue
		}
		plate := Inspections.NormalizePlate(cellAt(row, 0))
		if plate == "" {
			continue
		}

		vehicle := Models.Vehicle{
			Plate:       plate,
			VehicleType: cellAt(row, 1),
			Branch:      cellAt(row, 2),
			TireCount:   parseTireCount(cellAt(row, 3)),
			Active:      true,
		}

		var existing Models.Vehicle
		if err := db.Where("plate = ?", plate).First(&existing).Error; err == nil {
			existing.VehicleType = vehicle.VehicleType
			existing.Branch = vehicle.Branch
			existing.TireCount = vehicle.TireCount
			existing.Active = true
			if err := db.Save(&existing).Error; err != nil {
				log.Printf("Row %d: could not update %s: %v", i+1, plate, err)
				continue
			}
		} else if err := db.Create(&vehicle).Error; err != nil {
			log.Printf("Row %d: could not import %s: %v", i+1, plate, err)
			continue
		}
		imported++
	}

	log.Printf("Imported %d vehicles from %s", imported, path)
	return imported, nil
}
