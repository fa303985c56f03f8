package Models

import (
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the local database and migrates the registry and audit
// tables. The spreadsheet holds the inspection rows themselves; this
// database only carries what the engine needs locally: users, the fleet
// registry, branch distribution lists and audit trails.
func Connect() {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not open database %s: %v", path, err)
	}
	DB = connection

	DB.AutoMigrate(
		&User{},
		&FCMToken{},
	)

	DB.AutoMigrate(
		&Vehicle{},
		&Branch{},
	)

	DB.AutoMigrate(
		&InspectionLog{},
	)

	seedBranches()
}

// seedBranches makes sure every branch with a counter column exists in the
// registry with its distribution list. Existing rows are left alone so
// operators can edit recipients without a deploy.
func seedBranches() {
	defaults := []struct {
		name   string
		code   string
		emails []string
	}{
		{"(SU01) Panamá", "SU01", []string{"flota.panama@kestrel.example"}},
		{"(SU02) Chiriquí", "SU02", []string{"flota.chiriqui@kestrel.example"}},
		{"(SU03) Santiago", "SU03", []string{"flota.santiago@kestrel.example"}},
		{"(SU04) Chitré", "SU04", []string{"flota.chitre@kestrel.example"}},
		{"(SU05) Colón", "SU05", []string{"flota.colon@kestrel.example"}},
	}

	for _, seed := range defaults {
		var existing Branch
		if err := DB.Where("name = ?", seed.name).First(&existing).Error; err == nil {
			continue
		}
		branch := Branch{Name: seed.name, Code: seed.code}
		if err := branch.SetRecipients(seed.emails); err != nil {
			log.Printf("Could not encode recipients for %s: %v", seed.name, err)
			continue
		}
		if err := DB.Create(&branch).Error; err != nil {
			log.Printf("Could not seed branch %s: %v", seed.name, err)
		}
	}
}
