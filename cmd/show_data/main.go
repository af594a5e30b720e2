package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/symmetrixs/edaago/internal/config"
	"github.com/symmetrixs/edaago/internal/database"
	"github.com/symmetrixs/edaago/internal/services/stats"
	"github.com/symmetrixs/edaago/internal/store"
)

func main() {
	year := flag.String("year", "all", "restrict defect statistics to a report year")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
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
	st := store.NewGormStore(db.DB)
	svc := stats.NewService(st)

	dash, err := svc.Dashboard(ctx)
	if err != nil {
		log.Fatalf("❌ Dashboard: %v", err)
	}
	defects, err := svc.EquipmentDefects(ctx, *year)
	if err != nil {
		log.Fatalf("❌ Equipment statistics: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]interface{}{"dashboard": dash, "equipment": defects})
		return
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║          📊 EDAA Inspection Data Report                   ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Println("📈 INSPECTIONS")
	fmt.Println("──────────────────────────────────────────────────────────")
	fmt.Printf("  Total:         %3d\n", dash.TotalInspections)
	fmt.Printf("  Pending:       %3d\n", dash.PendingReports)
	fmt.Printf("  Completed:     %3d\n", dash.CompletedReports)
	if dash.ActiveInspectors != nil {
		fmt.Printf("  Inspectors:    %3d\n", *dash.ActiveInspectors)
	}
	fmt.Println()

	fmt.Printf("🔍 DEFECTS PER VESSEL (%s)\n", *year)
	fmt.Println("──────────────────────────────────────────────────────────")
	if len(defects) == 0 {
		fmt.Println("  (no equipment)")
	}
	for _, d := range defects {
		fmt.Printf("  %-32s total %3d  corr %2d  dent %2d  scr %2d  weld %2d\n",
			d.Name, d.Total, d.Corrosion, d.Dents, d.ScratchMark, d.WeldingDefects)
	}
}
