package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/DevangRnd/fota-backend/internal/config"
	"github.com/DevangRnd/fota-backend/internal/database"
	"github.com/DevangRnd/fota-backend/internal/firmware"
	"github.com/DevangRnd/fota-backend/internal/models"
	"github.com/DevangRnd/fota-backend/internal/registry"
)

const divider = "──────────────────────────────────────────────────────────"

// Report is the rollout snapshot printed by this tool
type Report struct {
	Devices   int                `json:"devices"`
	Idle      int                `json:"idle"`
	Pending   map[string]int     `json:"pending"`
	Installed map[string]int     `json:"installed"`
	Firmwares []firmware.Summary `json:"firmwares"`
	Vendors   map[string]int     `json:"vendors"`
}

func buildReport(devices []models.Device, firmwares []firmware.Summary) Report {
	rep := Report{
		Devices:   len(devices),
		Pending:   map[string]int{},
		Installed: map[string]int{},
		Firmwares: firmwares,
		Vendors:   map[string]int{},
	}
	for _, d := range devices {
		rep.Vendors[d.Vendor]++
		if d.CurrentFirmware != nil {
			rep.Installed[*d.CurrentFirmware]++
		}
		if d.PendingUpdate && d.TargetFirmwareName != nil {
			rep.Pending[*d.TargetFirmwareName]++
		} else {
			rep.Idle++
		}
	}
	return rep
}

func main() {
	asJSON := len(os.Args) > 1 && os.Args[1] == "--json"

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		fmt.Printf("❌ Failed to connect: %v\n", err)
		fmt.Println("\n💡 Try starting the server first:")
		fmt.Println("   go run ./cmd/api")
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	store := registry.New(db.DB)

	devices, err := store.ListDevices(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to load devices: %v\n", err)
		os.Exit(1)
	}
	firmwares, err := firmware.NewService(db.DB, cfg.Firmware.KeepHistory).List(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to load firmwares: %v\n", err)
		os.Exit(1)
	}
	rep := buildReport(devices, firmwares)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(rep)
		return
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║          📊 FOTA Rollout Report                           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Println("📈 DEVICES")
	fmt.Println(divider)
	fmt.Printf("  Registered:    %3d\n", rep.Devices)
	fmt.Printf("  Idle:          %3d\n", rep.Idle)
	for name, n := range rep.Pending {
		fmt.Printf("  Pending %-20s %3d\n", name+":", n)
	}
	for name, n := range rep.Installed {
		fmt.Printf("  Running %-20s %3d\n", name+":", n)
	}
	fmt.Println()

	fmt.Println("📦 FIRMWARES")
	fmt.Println(divider)
	if len(rep.Firmwares) == 0 {
		fmt.Println("  (none uploaded)")
	}
	for _, fw := range rep.Firmwares {
		fmt.Printf("  %s  [%s]\n", fw.Name, fw.ID)
	}
	fmt.Println()

	projects, err := store.ListProjects(ctx)
	if err == nil && len(projects) > 0 {
		fmt.Println("🏗️  PROJECTS")
		fmt.Println(divider)
		for _, p := range projects {
			fmt.Printf("  %s\n", p.Name)
			for i, v := range p.Vendors {
				branch := "├─"
				if i == len(p.Vendors)-1 {
					branch = "└─"
				}
				fmt.Printf("    %s %s (%d devices)\n", branch, v.Name, rep.Vendors[v.ID])
			}
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("═", 59))
}
