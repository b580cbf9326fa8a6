package main

import (
	"flag"
	"os"

	"github.com/cafeteria/menu-backend/internal/config"
	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	direction := flag.String("direction", database.MigrateUp, "migration direction: up or down")
	dbURLFlag := flag.String("database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	sourceFlag := flag.String("path", "", "migration source URL (overrides MIGRATIONS_PATH)")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := *dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	source := *sourceFlag
	if source == "" {
		source = os.Getenv("MIGRATIONS_PATH")
	}
	if source == "" {
		source = "file://migrations"
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB.DB, source, *direction, logger); err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
}
