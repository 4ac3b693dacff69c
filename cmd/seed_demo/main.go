package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/DevangRnd/fota-backend/internal/config"
	"github.com/DevangRnd/fota-backend/internal/database"
	"github.com/DevangRnd/fota-backend/internal/firmware"
	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/registry"
	"github.com/DevangRnd/fota-backend/internal/utils"
)

const (
	demoProject  = "Demo Project"
	demoVendor   = "Demo Vendor"
	demoFirmware = "demo-1.0.0.bin"
	demoDevices  = 12
)

var rule = strings.Repeat("=", 60)

func main() {
	fmt.Println("🌱 FOTA Demo Data Seeder")
	fmt.Println(rule)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	ctx := context.Background()
	store := registry.New(db.DB)

	// 1. Operator account
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	if _, err := store.CreateUser(ctx, "admin", hashed); err != nil {
		if !errors.Is(err, fota.ErrConflict) {
			log.Fatalf("❌ Failed to create operator: %v", err)
		}
		fmt.Println("   • Operator admin already exists")
	} else {
		fmt.Println("   ✓ Created operator: admin")
	}

	// 2. Project and vendor
	project, err := store.CreateProject(ctx, demoProject)
	if err != nil {
		if !errors.Is(err, fota.ErrConflict) {
			log.Fatalf("❌ Failed to create project: %v", err)
		}
		fmt.Printf("⚠️  Project %q already exists, nothing to seed\n", demoProject)
		return
	}
	fmt.Printf("   ✓ Created project: %s\n", project.Name)

	vendor, err := store.CreateVendor(ctx, project.ID, demoVendor)
	if err != nil {
		log.Fatalf("❌ Failed to create vendor: %v", err)
	}
	fmt.Printf("   ✓ Created vendor: %s (%s)\n", vendor.Name, vendor.ID)

	// 3. Firmware
	fw, err := firmware.NewService(db.DB, cfg.Firmware.KeepHistory).
		Upload(ctx, demoFirmware, []byte("demo firmware image"))
	if err != nil {
		log.Fatalf("❌ Failed to upload firmware: %v", err)
	}
	fmt.Printf("   ✓ Uploaded firmware: %s (%d bytes)\n", fw.Name, fw.Size)

	// 4. Devices, imported through the same path as a spreadsheet upload
	rows := make([]fota.RawRow, 0, demoDevices)
	for i := 1; i <= demoDevices; i++ {
		rows = append(rows, fota.RawRow{
			fota.ColDeviceID:  fmt.Sprintf("DEMO-%04d", i),
			fota.ColDistrict:  "Pune",
			fota.ColBlock:     "Haveli",
			fota.ColPanchayat: fmt.Sprintf("Gram %d", (i-1)/4+1),
		})
	}
	result := fota.NewReconciler(store).Reconcile(ctx, rows, vendor.ID)
	for _, r := range result.Rejected {
		log.Printf("⚠️  %s", r)
	}
	for _, note := range result.Notes {
		log.Printf("⚠️  %s", note)
	}
	fmt.Printf("✅ Imported %d devices (%d rejected)\n", len(result.Accepted), len(result.Rejected))

	// 5. Put the first half on the rollout
	cohort := result.Accepted[:len(result.Accepted)/2]
	n, err := fota.NewDispatcher(store).InitiateUpdate(ctx, cohort, fw.Name)
	if err != nil {
		log.Fatalf("❌ Failed to initiate update: %v", err)
	}
	fmt.Printf("✅ %d devices pending %s\n", n, fw.Name)

	fmt.Println()
	fmt.Println(rule)
	fmt.Println("🎉 Demo data created successfully!")
	fmt.Println()
	fmt.Println("🌐 Start the server:")
	fmt.Println("   go run ./cmd/api")
	fmt.Printf("   Then poll: curl http://localhost:%s/api/check-for-update/DEMO-0001\n", cfg.Port)
	fmt.Println(rule)
}
