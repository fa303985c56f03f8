package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"Kestrel/Controllers"
	"Kestrel/FiberConfig"
	"Kestrel/Fleet"
	"Kestrel/Inspections"
	"Kestrel/Models"
	"Kestrel/Notifications"
	"Kestrel/Reports"
	"Kestrel/Sheets"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment as is")
	}

	Models.Connect()

	ctx := context.Background()
	sheetsClient, err := Sheets.NewClient(ctx)
	if err != nil {
		log.Fatalf("Could not initialize Sheets client: %v", err)
	}

	store, err := Inspections.NewStoreFromEnv(sheetsClient)
	if err != nil {
		log.Fatalf("Could not configure inspection store: %v", err)
	}

	registry := Fleet.NewRegistry(Models.DB)

	if err := Notifications.InitFirebase(); err != nil {
		log.Printf("Firebase unavailable, report pushes disabled: %v", err)
	}

	pipeline, err := Reports.NewPipeline(sheetsClient, sheetsClient.TokenSource(ctx), registry, Notifications.Dispatcher{})
	if err != nil {
		log.Fatalf("Could not configure report pipeline: %v", err)
	}

	orchestrator := Inspections.NewOrchestrator(store, registry, pipeline)

	plateSync, err := Fleet.NewPlateSync(sheetsClient, Models.DB)
	if err != nil {
		log.Printf("Plate sync disabled: %v", err)
	} else if err := plateSync.Start(); err != nil {
		log.Printf("Could not start plate sync: %v", err)
	}

	handler := Controllers.NewInspectionHandler(orchestrator, registry)
	FiberConfig.FiberConfig(handler)
}
