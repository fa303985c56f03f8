package Inspections

import (
	"log"
	"strconv"
	"strings"
	"time"
)

// Direction of an inspection. The sheet stores the Spanish markers, the
// code works with the typed constants.
type Direction string

const (
	DirectionExit  Direction = "salida"
	DirectionEntry Direction = "entrada"
)

// Column layout of the inspection sheet (0 based). One row spans A..GH.
const (
	colTimestamp   = 0
	colPlate       = 1
	colDriver      = 2
	colBranch      = 3
	colVehicleType = 4
	colExitOdo     = 5
	colDirection   = 6

	colTireStart   = 7 // ten blocks of label, fp, pe, pa, wear
	tireBlockWidth = 5
	colTireRemarks = 57

	colFluidStart   = 58 // four blocks of label, name, required, full
	fluidBlockWidth = 4
	colFluidRemarks = 74

	colVisualStart   = 76 // four pairs of name, yes/no
	colVisualRemarks = 84

	colLightStart    = 86  // eight pairs of name, state
	colSupplyStart   = 103 // eight pairs of name, state
	colDocumentStart = 120 // eight pairs of name, state

	colDamageStart   = 137 // four blocks of label, view, scratch, dent, crack, missing
	damageBlockWidth = 6

	colRevisionStart = 162 // twelve pairs written by the entry path (column FG)
	colGeneralNotes  = 186
	colExitTime      = 187 // GF
	colEntryTime     = 188 // GG
	colEntryOdo      = 189 // GH

	rowWidth = 190
)

const (
	tireCount     = 10
	fluidCount    = 4
	visualCount   = 4
	lightCount    = 8
	supplyCount   = 8
	documentCount = 8
	damageCount   = 4
	revisionCount = 12
)

// timestampLayout matches the dd/mm/yyyy, HH:mm:ss strings the sheet holds.
const timestampLayout = "02/01/2006, 15:04:05"

var panamaTime = loadPanamaTime()

func loadPanamaTime() *time.Location {
	loc, err := time.LoadLocation("America/Panama")
	if err != nil {
		log.Printf("Could not load America/Panama timezone, falling back to UTC: %v", err)
		return time.UTC
	}
	return loc
}

// Now returns the current instant in the branch timezone.
func Now() time.Time {
	return time.Now().In(panamaTime)
}

// FormatTimestamp renders an instant the way the sheet stores it.
func FormatTimestamp(t time.Time) string {
	return t.In(panamaTime).Format(timestampLayout)
}

// FormatClock renders the HH:mm:ss part only, used for the exit and entry
// time cells.
func FormatClock(t time.Time) string {
	return t.In(panamaTime).Format("15:04:05")
}

// ParseTimestamp parses a sheet timestamp. Malformed values return ok=false
// and must be filtered out by the caller, never treated as fatal.
func ParseTimestamp(raw string) (time.Time, bool) {
	t, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(raw), panamaTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizePlate trims and uppercases a plate for comparison.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// cell reads column i of a row, tolerating short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// cellFloat reads a numeric cell. Malformed or missing values read as zero
// by design, a historic bad cell must not block new inspections.
func cellFloat(row []string, i int) float64 {
	value, err := strconv.ParseFloat(cell(row, i), 64)
	if err != nil {
		return 0
	}
	return value
}

func mark(checked bool) string {
	if checked {
		return "√"
	}
	return ""
}

func yesNo(yes bool) string {
	if yes {
		return "sí"
	}
	return "no"
}

func triState(yes, no bool) string {
	switch {
	case yes:
		return "sí"
	case no:
		return "no"
	default:
		return "N/A"
	}
}

// FluidCheck is one fluid level verification of an exit submission.
type FluidCheck struct {
	Nombre   string `json:"nombre"`
	Requiere bool   `json:"requiere"`
	Lleno    bool   `json:"lleno"`
}

// VisualCheck is one visual parameter verification.
type VisualCheck struct {
	Nombre string `json:"nombre"`
	Si     bool   `json:"si"`
}

// LightCheck is one light verification, tri-state: works, does not, N/A.
type LightCheck struct {
	Nombre     string `json:"nombre"`
	FuncionaSi bool   `json:"funcionaSi"`
	FuncionaNo bool   `json:"funcionaNo"`
}

// SupplyCheck is one onboard supply verification (cones, extinguisher...).
type SupplyCheck struct {
	Nombre       string `json:"nombre"`
	DisponibleSi bool   `json:"disponibleSi"`
	DisponibleNo bool   `json:"disponibleNo"`
}

// DocumentCheck is one vehicle document verification.
type DocumentCheck struct {
	Nombre       string `json:"nombre"`
	DisponibleSi bool   `json:"disponibleSi"`
}

// BodyDamage is one body damage observation. The report uses the historic
// symbols: X scratches, / dents, O cracks, * missing parts.
type BodyDamage struct {
	Vista    string `json:"vista"`
	Rayones  bool   `json:"rayones"`
	Golpes   bool   `json:"golpes"`
	Quebrado bool   `json:"quebrado"`
	Faltante bool   `json:"faltante"`
}

// RevisionCheck is one return-time verification of an entry submission.
// Opcion is tri-state: true sí, false no, nil N/A.
type RevisionCheck struct {
	Descripcion string `json:"descripcion"`
	Opcion      *bool  `json:"opcion"`
}

func (r RevisionCheck) state() string {
	if r.Opcion == nil {
		return "N/A"
	}
	return yesNo(*r.Opcion)
}

// ExitSubmission is a validated check-out inspection ready for persistence.
type ExitSubmission struct {
	Plate        string
	Driver       string
	Branch       string
	VehicleType  string
	Odometer     float64
	TireCount    int
	Tires        []TireCheck
	TireRemarks  string
	Fluids       []FluidCheck
	FluidRemarks string
	Visuals      []VisualCheck
	VisualNotes  string
	Lights       []LightCheck
	Supplies     []SupplyCheck
	Documents    []DocumentCheck
	Damages      []BodyDamage
}

// EntrySubmission is a validated check-in inspection for an open exit row.
type EntrySubmission struct {
	Plate     string
	RowIndex  int
	Odometer  float64
	Revisions []RevisionCheck
	Remarks   string
}

// buildExitRow lays a submission out over a full width inspection row,
// exit time cell included, so one append is the whole commit. Tire slots
// come pre-normalized so the ten blocks land on fixed columns regardless
// of the vehicle's configuration.
func buildExitRow(sub ExitSubmission, slots [10]*TireCheck, stamped time.Time) []interface{} {
	row := make([]interface{}, rowWidth)
	for i := range row {
		row[i] = ""
	}

	row[colTimestamp] = FormatTimestamp(stamped)
	row[colExitTime] = FormatClock(stamped)
	row[colPlate] = NormalizePlate(sub.Plate)
	row[colDriver] = sub.Driver
	row[colBranch] = sub.Branch
	row[colVehicleType] = sub.VehicleType
	row[colExitOdo] = strconv.FormatFloat(sub.Odometer, 'f', -1, 64)
	row[colDirection] = string(DirectionExit)

	for i := 0; i < tireCount; i++ {
		base := colTireStart + i*tireBlockWidth
		row[base] = "llanta " + strconv.Itoa(i+1)
		if tire := slots[i]; tire != nil {
			row[base+1] = mark(tire.FP)
			row[base+2] = mark(tire.PE)
			row[base+3] = mark(tire.PA)
			if tire.Desgaste {
				row[base+4] = "x"
			}
		}
	}
	row[colTireRemarks] = sub.TireRemarks

	for i := 0; i < fluidCount; i++ {
		base := colFluidStart + i*fluidBlockWidth
		row[base] = "Nivel " + strconv.Itoa(i+1)
		if i < len(sub.Fluids) {
			fluid := sub.Fluids[i]
			row[base+1] = fluid.Nombre
			row[base+2] = mark(fluid.Requiere)
			row[base+3] = mark(fluid.Lleno)
		}
	}
	row[colFluidRemarks] = sub.FluidRemarks

	for i := 0; i < visualCount; i++ {
		base := colVisualStart + i*2
		if i < len(sub.Visuals) {
			visual := sub.Visuals[i]
			row[base] = visual.Nombre
			row[base+1] = yesNo(visual.Si)
		}
	}
	row[colVisualRemarks] = sub.VisualNotes

	for i := 0; i < lightCount; i++ {
		base := colLightStart + i*2
		if i < len(sub.Lights) {
			light := sub.Lights[i]
			row[base] = light.Nombre
			row[base+1] = triState(light.FuncionaSi, light.FuncionaNo)
		}
	}

	for i := 0; i < supplyCount; i++ {
		base := colSupplyStart + i*2
		if i < len(sub.Supplies) {
			supply := sub.Supplies[i]
			row[base] = supply.Nombre
			row[base+1] = triState(supply.DisponibleSi, supply.DisponibleNo)
		}
	}

	for i := 0; i < documentCount; i++ {
		base := colDocumentStart + i*2
		if i < len(sub.Documents) {
			document := sub.Documents[i]
			row[base] = document.Nombre
			row[base+1] = yesNo(document.DisponibleSi)
		}
	}

	for i := 0; i < damageCount; i++ {
		base := colDamageStart + i*damageBlockWidth
		row[base] = "Daño " + strconv.Itoa(i+1)
		if i < len(sub.Damages) {
			damage := sub.Damages[i]
			row[base+1] = damage.Vista
			row[base+2] = damageMark(damage.Rayones, "X")
			row[base+3] = damageMark(damage.Golpes, "/")
			row[base+4] = damageMark(damage.Quebrado, "O")
			row[base+5] = damageMark(damage.Faltante, "*")
		}
	}

	return row
}

func damageMark(present bool, symbol string) string {
	if present {
		return symbol
	}
	return "no"
}

// buildRevisionValues lays the twelve entry revisions plus the general
// remarks out as the single row block written at column FG.
func buildRevisionValues(revisions []RevisionCheck, remarks string) []interface{} {
	values := make([]interface{}, 0, revisionCount*2+1)
	for i := 0; i < revisionCount; i++ {
		var revision RevisionCheck
		if i < len(revisions) {
			revision = revisions[i]
		}
		values = append(values, revision.Descripcion, revision.state())
	}
	return append(values, remarks)
}
