package FiberConfig

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"Kestrel/Controllers"
	"Kestrel/Models"
	"Kestrel/middleware"
)

func SetupRoutes(app *fiber.App, inspections *Controllers.InspectionHandler) {
	api := app.Group("/api")

	// Auth
	api.Post("/Login", Controllers.Login)
	api.Use("/Logout", Controllers.Logout)
	api.Use("/User", Controllers.User)
	api.Get("/validate-token", Controllers.ValidateToken)
	api.Post("/RegisterUser", middleware.Verify(4), Controllers.RegisterUser)
	api.Get("/FetchUsers", middleware.Verify(4), Controllers.FetchUsers)
	api.Post("/UpdateToken", Models.UpdateToken)

	// Inspection lifecycle
	inspectionRoutes := api.Group("/inspections", middleware.Verify(1))
	inspectionRoutes.Get("/check/:plate", inspections.CheckPlate)
	inspectionRoutes.Get("/odometer/:plate", inspections.LastOdometer)
	inspectionRoutes.Post("/salida", inspections.RegisterExit)
	inspectionRoutes.Post("/entrada", inspections.RegisterEntry)

	// Fleet registry
	api.Post("/fleet/import", middleware.Verify(3), inspections.ImportVehicles)

	// Audit trail
	api.Get("/logs", middleware.Verify(4), Controllers.GetInspectionLogs)
	api.Get("/logs/stats", middleware.Verify(4), Controllers.GetInspectionLogStats)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
}

func FiberConfig(inspections *Controllers.InspectionHandler) {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, inspections)
	app.Listen(":3001")
}
