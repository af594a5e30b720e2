package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/symmetrixs/edaago/internal/config"
	"github.com/symmetrixs/edaago/internal/database"
	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/services/inspection"
	"github.com/symmetrixs/edaago/internal/services/users"
	"github.com/symmetrixs/edaago/internal/store"
)

const demoPassword = "demo1234"

func main() {
	fmt.Println("🌱 EDAA Demo Data Seeder")
	fmt.Println(strings.Repeat("=", 60))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("🔨 Running database migrations...")
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	ctx := context.Background()
	st := store.NewGormStore(db.DB)
	accounts := users.NewService(st, cfg.JWTSecret)
	inspections := inspection.NewService(st)

	seedUser(ctx, accounts, st, "Demo Admin", "admin@demo.local", models.RoleAdmin)
	inspector := seedUser(ctx, accounts, st, "Demo Inspector", "inspector@demo.local", models.RoleInspector)

	vessels := []models.Equipment{
		{EquipDescription: "Air Receiver AR-01", EquipType: "Air Receiver", TagNo: "AR-01", PlantName: "Kerteh Plant", DOSH: "PMT-1201"},
		{EquipDescription: "Steam Boiler SB-02", EquipType: "Boiler", TagNo: "SB-02", PlantName: "Kerteh Plant", DOSH: "PMT-1202"},
		{EquipDescription: "Separator V-103", EquipType: "Pressure Vessel", TagNo: "V-103", PlantName: "Gebeng Plant", DOSH: "PMT-1303"},
	}
	existing, err := st.ListEquipment(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to list equipment: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("⏭️  %d vessels already present, skipping inspections\n", len(existing))
		return
	}

	for n, v := range vessels {
		v := v
		if err := st.CreateEquipment(ctx, &v); err != nil {
			log.Fatalf("❌ Failed to create vessel %s: %v", v.TagNo, err)
		}
		insp := &models.Inspection{
			EquipID:         v.EquipID,
			UserIDInspector: inspector.UserID,
			ReportNo:        fmt.Sprintf("EDAA-2024-%03d", n+1),
			ReportDate:      fmt.Sprintf("2024-0%d-15", n+3),
		}
		if err := inspections.Create(ctx, insp); err != nil {
			log.Fatalf("❌ Failed to create inspection %s: %v", insp.ReportNo, err)
		}

		for i, category := range []string{"External", "Internal"} {
			numbering := float64(i + 1)
			c := category
			p := &models.PhotoReport{
				InspectionID:   insp.InspectionID,
				PhotoURL:       fmt.Sprintf("https://picsum.photos/seed/%s-%d/800/600", v.TagNo, i),
				PhotoNumbering: &numbering,
				Category:       &c,
			}
			if err := st.CreatePhoto(ctx, p); err != nil {
				log.Fatalf("❌ Failed to create photo: %v", err)
			}
		}
		fmt.Printf("✅ %s inspected in %s\n", v.EquipDescription, insp.ReportNo)
	}

	fmt.Println()
	fmt.Printf("🎉 Demo data ready. Log in with inspector@demo.local / %s\n", demoPassword)
}

// seedUser creates the account unless the email is taken, in which case the existing row is returned
func seedUser(ctx context.Context, accounts *users.Service, st store.Store, name, email, role string) *models.User {
	u, err := accounts.CreateUser(ctx, users.CreateUserInput{Name: name, Email: email, Password: demoPassword, Role: role})
	if errors.Is(err, users.ErrEmailTaken) {
		u, err = st.GetUserByEmail(ctx, email)
	}
	if err != nil {
		log.Fatalf("❌ Failed to seed %s: %v", email, err)
	}
	fmt.Printf("👤 %s (%s)\n", email, role)
	return u
}
