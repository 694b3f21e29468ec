package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "boq-procurement/internal/adapters/web"
	"boq-procurement/internal/app"
	"boq-procurement/internal/backup"
	"boq-procurement/internal/core"
	"boq-procurement/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	policy := core.PolicyFromEnv()

	users := core.NewUserService(pool)
	projects := core.NewProjectService(pool)
	locations := core.NewLocationService(pool)
	partners := core.NewPartnerService(pool)
	ledger := core.NewDeliveryLedgerService(pool)
	sequences := core.NewSequenceService(pool)
	allocations := core.NewAllocationService(pool, ledger, sequences, policy)

	backupDir := os.Getenv("BACKUP_DIR")
	if backupDir == "" {
		backupDir = "backups"
	}
	exporter := backup.NewExporter(pool, backupDir)

	svc := app.NewAppService(users, projects, locations, partners, ledger, sequences, allocations, exporter, policy)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
