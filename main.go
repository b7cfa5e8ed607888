package main

import (
	"context"
	"flag"
	"log"

	"viksit_backend/internal/app"
	"viksit_backend/internal/config"
	"viksit_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations at startup, even in release mode")
	importFile := flag.String("import", "", "import mocks, study materials and authors from a YAML file and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly || *importFile != ""
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg, *configDir)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration completed, exiting")
		return
	}

	if *importFile != "" {
		report, err := application.ImportContent(context.Background(), *importFile)
		if err != nil {
			logger.Log.Fatal("Content import failed", zap.String("file", *importFile), zap.Error(err))
		}
		log.Printf("Imported %d authors, %d mocks (%d questions), %d study materials, %d files",
			report.Authors, report.Mocks, report.Questions, report.StudyMaterials, report.Files)
		return
	}

	application.Run()
}
