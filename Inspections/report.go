package Inspections

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

// ReportTire is one tire block of a completed row, marks as stored.
type ReportTire struct {
	FP   string
	PE   string
	PA   string
	Wear string
}

// ReportFluid is one fluid block, the required/full marks.
type ReportFluid struct {
	Required string
	Full     string
}

// ReportDamage is one body damage block.
type ReportDamage struct {
	View      string
	Scratches string
	Dents     string
	Cracks    string
	Missing   string
}

// ReportPayload carries everything the export pipeline needs to fill the
// R06-PT-19 template: the completed row parsed into named fields plus the
// issued consecutive number.
type ReportPayload struct {
	RowIndex    int
	Consecutive int

	DateCode    string // MMDDYYYY, used in the PDF filename and date cell
	Plate       string
	Driver      string
	Branch      string
	VehicleType string

	ExitOdometer  string
	EntryOdometer string
	ExitTime      string
	EntryTime     string

	Tires       [tireCount]ReportTire
	TireRemarks string

	Fluids       [fluidCount]ReportFluid
	FluidRemarks string

	Visuals       [visualCount]string
	VisualRemarks string

	Lights    [lightCount]string
	Supplies  [supplyCount]string
	Documents [documentCount]string
	Damages   [damageCount]ReportDamage

	Revisions      [revisionCount]string
	GeneralRemarks string
}

var branchCodePattern = regexp.MustCompile(`\((.*?)\)`)

// BranchCode extracts the parenthesized code of the branch name, e.g.
// "(SU02) Chiriquí" gives SU02. Unknown formats give ND.
func (p ReportPayload) BranchCode() string {
	match := branchCodePattern.FindStringSubmatch(p.Branch)
	if len(match) < 2 || strings.TrimSpace(match[1]) == "" {
		return "ND"
	}
	return strings.TrimSpace(match[1])
}

// FileName is the historic report naming scheme the branches archive by.
func (p ReportPayload) FileName() string {
	return fmt.Sprintf("%s-%s-%s-R06-PT-19-Revisión de Vehículos-%d.pdf",
		p.DateCode, p.BranchCode(), p.Plate, p.Consecutive)
}

// parseReportRow maps a completed inspection row onto the payload. It is
// the inverse of buildExitRow plus the entry columns.
func parseReportRow(row []string, rowIndex int) ReportPayload {
	payload := ReportPayload{
		RowIndex:      rowIndex,
		DateCode:      dateCode(cell(row, colTimestamp)),
		Plate:         cell(row, colPlate),
		Driver:        cell(row, colDriver),
		Branch:        cell(row, colBranch),
		VehicleType:   cell(row, colVehicleType),
		ExitOdometer:  cell(row, colExitOdo),
		EntryOdometer: cell(row, colEntryOdo),
		ExitTime:      cell(row, colExitTime),
		EntryTime:     cell(row, colEntryTime),

		TireRemarks:    cell(row, colTireRemarks),
		FluidRemarks:   cell(row, colFluidRemarks),
		VisualRemarks:  cell(row, colVisualRemarks),
		GeneralRemarks: cell(row, colGeneralNotes),
	}

	for i := 0; i < tireCount; i++ {
		base := colTireStart + i*tireBlockWidth
		payload.Tires[i] = ReportTire{
			FP:   cell(row, base+1),
			PE:   cell(row, base+2),
			PA:   cell(row, base+3),
			Wear: cell(row, base+4),
		}
	}

	for i := 0; i < fluidCount; i++ {
		base := colFluidStart + i*fluidBlockWidth
		payload.Fluids[i] = ReportFluid{
			Required: cell(row, base+2),
			Full:     cell(row, base+3),
		}
	}

	for i := 0; i < visualCount; i++ {
		payload.Visuals[i] = cell(row, colVisualStart+i*2+1)
	}
	for i := 0; i < lightCount; i++ {
		payload.Lights[i] = cell(row, colLightStart+i*2+1)
	}
	for i := 0; i < supplyCount; i++ {
		payload.Supplies[i] = cell(row, colSupplyStart+i*2+1)
	}
	for i := 0; i < documentCount; i++ {
		payload.Documents[i] = cell(row, colDocumentStart+i*2+1)
	}

	for i := 0; i < damageCount; i++ {
		base := colDamageStart + i*damageBlockWidth
		payload.Damages[i] = ReportDamage{
			View:      cell(row, base+1),
			Scratches: cell(row, base+2),
			Dents:     cell(row, base+3),
			Cracks:    cell(row, base+4),
			Missing:   cell(row, base+5),
		}
	}

	for i := 0; i < revisionCount; i++ {
		state := cell(row, colRevisionStart+i*2+1)
		if state != "sí" && state != "no" {
			state = "N/A"
		}
		payload.Revisions[i] = state
	}

	return payload
}

// dateCode turns the row timestamp into the MMDDYYYY code of the report.
// Two digit years get the century added, anything unparseable falls back
// to ND rather than blocking the report.
func dateCode(timestamp string) string {
	if stamp, ok := ParseTimestamp(timestamp); ok {
		return stamp.Format("01022006")
	}

	datePart := strings.TrimSpace(strings.Split(timestamp, ",")[0])
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		log.Printf("Could not derive report date code from %q", timestamp)
		return "ND"
	}
	day := zeroPad(strings.TrimSpace(parts[0]))
	month := zeroPad(strings.TrimSpace(parts[1]))
	year := strings.TrimSpace(parts[2])
	if len(year) == 2 {
		year = "20" + year
	}
	if len(year) != 4 {
		log.Printf("Could not derive report date code from %q", timestamp)
		return "ND"
	}
	return month + day + year
}

func zeroPad(part string) string {
	if len(part) == 1 {
		return "0" + part
	}
	return part
}
