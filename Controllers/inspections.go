package Controllers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"Kestrel/Fleet"
	"Kestrel/Inspections"
	"Kestrel/Models"
)

var validate = validator.New()

// InspectionHandler exposes the check-out/check-in engine over HTTP.
type InspectionHandler struct {
	Orchestrator *Inspections.Orchestrator
	Registry     *Fleet.Registry
}

func NewInspectionHandler(orchestrator *Inspections.Orchestrator, registry *Fleet.Registry) *InspectionHandler {
	return &InspectionHandler{Orchestrator: orchestrator, Registry: registry}
}

// CheckPlate tells the mobile form whether the plate's next inspection is
// an exit or an entry, plus what it needs to prefill.
func (h *InspectionHandler) CheckPlate(c *fiber.Ctx) error {
	plate := c.Params("plate")
	if plate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Plate is required"})
	}

	state, err := h.Orchestrator.Store.ResolvePlateState(c.Context(), plate)
	if err != nil {
		return inspectionError(c, err)
	}

	response := fiber.Map{
		"plate":     state.Plate,
		"direction": state.RequiredDirection,
		"new_plate": state.NewPlate,
		"tires":     int(h.Registry.TireConfiguration(state.Plate)),
	}
	if state.RequiredDirection == Inspections.DirectionEntry {
		response["row_index"] = state.RowIndex
		response["exit_odometer"] = state.LastExitOdometer
	}
	if vehicle, err := h.Registry.VehicleByPlate(state.Plate); err == nil {
		response["vehicle_type"] = vehicle.VehicleType
		response["branch"] = vehicle.Branch
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// ExitRequest is the check-out form payload.
type ExitRequest struct {
	Plate        string                      `json:"placa" validate:"required"`
	Driver       string                      `json:"conductor" validate:"required"`
	Branch       string                      `json:"sucursal" validate:"required"`
	VehicleType  string                      `json:"tipoVehiculo"`
	Odometer     float64                     `json:"odometro" validate:"required,gt=0"`
	TireCount    int                         `json:"cantidadLlantas"`
	Tires        []Inspections.TireCheck     `json:"llantas"`
	TireRemarks  string                      `json:"observacionesLlantas"`
	Fluids       []Inspections.FluidCheck    `json:"niveles"`
	FluidRemarks string                      `json:"observacionesNiveles"`
	Visuals      []Inspections.VisualCheck   `json:"parametrosVisuales"`
	VisualNotes  string                      `json:"observacionesVisuales"`
	Lights       []Inspections.LightCheck    `json:"luces"`
	Supplies     []Inspections.SupplyCheck   `json:"insumos"`
	Documents    []Inspections.DocumentCheck `json:"documentacion"`
	Damages      []Inspections.BodyDamage    `json:"golpes"`
}

// RegisterExit validates and persists a check-out inspection.
func (h *InspectionHandler) RegisterExit(c *fiber.Ctx) error {
	var req ExitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.Orchestrator.ProcessExit(c.Context(), Inspections.ExitSubmission{
		Plate:        req.Plate,
		Driver:       req.Driver,
		Branch:       req.Branch,
		VehicleType:  req.VehicleType,
		Odometer:     req.Odometer,
		TireCount:    req.TireCount,
		Tires:        req.Tires,
		TireRemarks:  req.TireRemarks,
		Fluids:       req.Fluids,
		FluidRemarks: req.FluidRemarks,
		Visuals:      req.Visuals,
		VisualNotes:  req.VisualNotes,
		Lights:       req.Lights,
		Supplies:     req.Supplies,
		Documents:    req.Documents,
		Damages:      req.Damages,
	})
	if err != nil {
		return inspectionError(c, err)
	}

	Models.RecordInspection(Models.InspectionLog{
		Plate:     Inspections.NormalizePlate(req.Plate),
		Direction: string(Inspections.DirectionExit),
		Branch:    req.Branch,
		RowIndex:  result.RowIndex,
		Odometer:  req.Odometer,
		UserID:    currentUserID(c),
	}, req)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Salida registrada",
		"row_index": result.RowIndex,
		"timestamp": Inspections.FormatTimestamp(result.Timestamp),
	})
}

// EntryRequest is the check-in form payload.
type EntryRequest struct {
	Plate     string                      `json:"placa" validate:"required"`
	RowIndex  int                         `json:"fila"`
	Odometer  float64                     `json:"odometro" validate:"required,gt=0"`
	Revisions []Inspections.RevisionCheck `json:"revisiones"`
	Remarks   string                      `json:"observaciones"`
}

// RegisterEntry completes the plate's open exit and kicks off the report
// pipeline.
func (h *InspectionHandler) RegisterEntry(c *fiber.Ctx) error {
	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.Orchestrator.ProcessEntry(c.Context(), Inspections.EntrySubmission{
		Plate:     req.Plate,
		RowIndex:  req.RowIndex,
		Odometer:  req.Odometer,
		Revisions: req.Revisions,
		Remarks:   req.Remarks,
	})
	if err != nil && !result.RowCommitted {
		return inspectionError(c, err)
	}

	entry := Models.InspectionLog{
		Plate:       Inspections.NormalizePlate(req.Plate),
		Direction:   string(Inspections.DirectionEntry),
		Branch:      result.Payload.Branch,
		RowIndex:    result.RowIndex,
		Odometer:    req.Odometer,
		Consecutive: result.Consecutive,
		UserID:      currentUserID(c),
	}
	if result.Consecutive != 0 {
		entry.ReportFile = result.Payload.FileName()
	}
	if result.ReportErr != nil {
		entry.ReportError = result.ReportErr.Error()
	}
	Models.RecordInspection(entry, req)

	response := fiber.Map{
		"message":   "Entrada registrada",
		"row_index": result.RowIndex,
	}
	if result.Consecutive != 0 {
		response["consecutivo"] = result.Consecutive
		response["report_file"] = result.Payload.FileName()
	}
	if err != nil {
		// The row committed but the consecutive number did not get issued.
		log.Printf("Entry for %s committed without consecutive number: %v", req.Plate, err)
		response["warning"] = "Entrada registrada, pero no se pudo emitir el número consecutivo"
		return c.Status(fiber.StatusAccepted).JSON(response)
	}
	if result.ReportErr != nil {
		response["warning"] = "Entrada registrada, pero el reporte no pudo generarse"
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// LastOdometer returns the highest recorded reading for the plate and
// direction, so the form can pre-validate before submitting.
func (h *InspectionHandler) LastOdometer(c *fiber.Ctx) error {
	plate := c.Params("plate")
	if plate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Plate is required"})
	}

	direction := Inspections.Direction(c.Query("direction", string(Inspections.DirectionExit)))
	if direction != Inspections.DirectionExit && direction != Inspections.DirectionEntry {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Direction must be salida or entrada"})
	}

	// Probe with zero: the rejection carries the last known reading.
	err := h.Orchestrator.Store.ValidateOdometer(c.Context(), plate, direction, 0)
	var regression *Inspections.OdometerRegressionError
	if errors.As(err, &regression) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"plate":     Inspections.NormalizePlate(plate),
			"direction": direction,
			"odometer":  regression.LastKnown,
		})
	}
	if err != nil {
		return inspectionError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"plate":     Inspections.NormalizePlate(plate),
		"direction": direction,
		"odometer":  0,
	})
}

// ImportVehicles loads an uploaded Excel workbook into the fleet registry.
func (h *InspectionHandler) ImportVehicles(c *fiber.Ctx) error {
	file, err := c.FormFile("workbook")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Workbook file is required"})
	}

	path := "./uploads/" + file.Filename
	if err := c.SaveFile(file, path); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not store upload"})
	}

	imported, err := Fleet.ImportVehiclesFromExcel(Models.DB, path)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"imported": imported})
}

// inspectionError maps the engine's error taxonomy onto HTTP statuses.
func inspectionError(c *fiber.Ctx, err error) error {
	var (
		invalidTires *Inspections.InvalidTireConfigurationError
		regression   *Inspections.OdometerRegressionError
		noExit       *Inspections.NoOpenExitError
		concurrent   *Inspections.ConcurrentModificationError
		conflict     *Inspections.ConsecutiveNumberConflictError
		unknown      *Inspections.UnknownBranchError
		access       *Inspections.DataAccessError
	)

	switch {
	case errors.As(err, &invalidTires):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &regression):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":         err.Error(),
			"last_odometer": regression.LastKnown,
		})
	case errors.As(err, &noExit):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &concurrent):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &unknown):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &access):
		log.Printf("Spreadsheet access failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Spreadsheet backend unavailable"})
	}

	log.Printf("Unhandled inspection error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error"})
}

func currentUserID(c *fiber.Ctx) uint {
	if user, ok := c.Locals("user").(Models.User); ok {
		return user.ID
	}
	return 0
}
