package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/cafeteria/menu-backend/internal/config"
	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	file := flag.String("file", "", "YAML file with a top-level staff: list of full names")
	dbURLFlag := flag.String("database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.Parse()

	_ = godotenv.Load()

	if *file == "" {
		*file = os.Getenv("STAFF_DIRECTORY_FILE")
	}
	if *file == "" {
		logger.Fatal("-file was not provided and STAFF_DIRECTORY_FILE is not set")
	}

	dbURL := *dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	names, err := config.LoadStaffDirectory(*file)
	if err != nil {
		logger.Fatalf("Failed to read staff directory: %v", err)
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

	staffService := services.NewStaffService(
		database.NewStaffDirectoryRepository(db),
		database.NewUserRepository(db),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	added, err := staffService.SeedDirectory(ctx, names)
	if err != nil {
		logger.Fatalf("Failed to seed staff directory: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"file":    *file,
		"names":   len(names),
		"added":   added,
		"skipped": len(names) - added,
	}).Info("Staff directory seeded")
}
