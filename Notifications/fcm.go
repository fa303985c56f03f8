package Notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"Kestrel/Inspections"
	"Kestrel/Models"
)

var firebaseClient *messaging.Client
var ctx = context.Background()

// InitFirebase sets up the Cloud Messaging client. Call once at startup;
// without it pushes are silently skipped.
func InitFirebase() error {
	credentials := os.Getenv("FIREBASE_CREDENTIALS")
	if credentials == "" {
		credentials = "./firebase-adminsdk.json"
	}
	opt := option.WithCredentialsFile(credentials)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting Messaging client: %v", err)
	}

	firebaseClient = client
	log.Println("Firebase initialized successfully")
	return nil
}

// Dispatcher pushes report-ready notifications to the registered device.
// It satisfies Reports.Notifier.
type Dispatcher struct{}

// ReportReady tells the fleet dispatcher's device that a vehicle checked
// back in and its report is archived. Push failures only get logged, the
// inspection and the report are already done.
func (Dispatcher) ReportReady(payload Inspections.ReportPayload, driveLink string) {
	if firebaseClient == nil {
		return
	}

	var token Models.FCMToken
	if err := Models.DB.First(&token, 1).Error; err != nil || token.Value == "" {
		log.Println("No FCM token registered, skipping report notification")
		return
	}

	message := &messaging.Message{
		Token: token.Value,
		Data: map[string]string{
			"plate":       payload.Plate,
			"branch":      payload.Branch,
			"consecutive": strconv.Itoa(payload.Consecutive),
			"drive_link":  driveLink,
		},
		Notification: &messaging.Notification{
			Title: "Revisión completada",
			Body: fmt.Sprintf("Vehículo %s registró entrada, consecutivo %d (%s)",
				payload.Plate, payload.Consecutive, payload.BranchCode()),
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
			Priority: "high",
		},
	}

	response, err := firebaseClient.Send(ctx, message)
	if err != nil {
		log.Printf("Error sending report notification for %s: %v", payload.Plate, err)
		return
	}
	log.Printf("Report notification sent: %s", response)
}
