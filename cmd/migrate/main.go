package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"teamhub/config"
	"teamhub/pkg/database"
)

const usage = `
TeamHub - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all migrations (GORM + SQL)
  status      Show database connection status
  seed        Seed the admin user and default chat room

Flags:
  -migrations string   Path to migrations directory (default "migrations")
  -admin-pass string   Admin password for seeding (default "Admin@123!")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	adminPass := flag.String("admin-pass", "Admin@123!", "Admin password for seeding")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp(*migrationsDir)
	case "status":
		showStatus()
	case "seed":
		runSeed(*adminPass)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(migrationsDir string) {
	log.Println("Running migrations...")

	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("GORM migration failed: %v", err)
	}
	if err := database.ApplyRawMigrations(migrationsDir); err != nil {
		log.Fatalf("Raw migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

func showStatus() {
	if err := database.HealthCheck(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")
}

func runSeed(adminPass string) {
	log.Println("Seeding database...")

	seedCfg := database.DefaultSeedConfig()
	if adminPass != "" {
		seedCfg.AdminPassword = adminPass
	}
	if err := database.Seed(seedCfg); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding completed")
}
