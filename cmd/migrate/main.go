package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	catalogapp "github.com/atelier/backend/internal/application/catalog"
	identityapp "github.com/atelier/backend/internal/application/identity"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/migration"
	"github.com/atelier/backend/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(args, resolvePath(migrationsPath), log); err != nil {
		log.Error("Command failed", zap.String("command", args[0]), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(args []string, migrationsPath string, log *zap.Logger) error {
	command := args[0]

	switch command {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate create <name>")
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1])
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil
	case "list":
		files, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println("  -", f)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch command {
	case "seed-taxonomy":
		return seedTaxonomy(cfg, log)
	case "seed-admin":
		return seedAdmin(cfg, log)
	}

	if cfg.Database.Driver == "sqlite" {
		if command != "up" {
			return fmt.Errorf("%s is only supported on postgres; sqlite databases are migrated from the models", command)
		}
		db, err := persistence.NewDatabase(&cfg.Database, log, "warn")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := db.AutoMigrate(); err != nil {
			return err
		}
		log.Info("SQLite schema migrated", zap.String("path", cfg.Database.Path))
		return nil
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	m, err := migration.New(sqlDB, migrationsPath, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() { _ = m.Close() }()

	switch command {
	case "up":
		return m.Up()
	case "down":
		n := 1
		if len(args) > 1 {
			if n, err = strconv.Atoi(args[1]); err != nil || n < 1 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		return m.Down(n)
	case "goto":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate goto <version>")
		}
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return m.GoTo(uint(v))
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate force <version>")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		log.Warn("Forcing migration version", zap.Int("version", v))
		return m.Force(v)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// seedTaxonomy loads the fixed category hierarchy
func seedTaxonomy(cfg *config.Config, log *zap.Logger) error {
	db, err := persistence.NewDatabase(&cfg.Database, log, "warn")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	svc := catalogapp.NewCategoryService(
		persistence.NewGormHierarchyRepository(db.DB),
		persistence.NewGormPrescriptionCategoryRepository(db.DB),
		log,
	)
	result, err := svc.ImportTaxonomy(context.Background())
	if err != nil {
		return err
	}
	log.Info("Taxonomy imported", zap.Any("result", result))
	return nil
}

// seedAdmin creates the bootstrap administrator from configuration
func seedAdmin(cfg *config.Config, log *zap.Logger) error {
	if cfg.Bootstrap.AdminEmail == "" || cfg.Bootstrap.AdminPassword == "" {
		return fmt.Errorf("bootstrap.admin_email and bootstrap.admin_password are required")
	}
	db, err := persistence.NewDatabase(&cfg.Database, log, "warn")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	svc := identityapp.NewAuthService(
		persistence.NewGormUserRepository(db.DB),
		auth.NewJWTService(cfg.JWT),
		auth.NewInMemoryTokenBlacklist(),
		log,
	)
	created, err := svc.EnsureAdmin(context.Background(), cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName)
	if err != nil {
		return err
	}
	if !created {
		log.Info("Admin account already exists", zap.String("email", cfg.Bootstrap.AdminEmail))
	}
	return nil
}

// resolvePath finds the migrations directory next to the working directory
// or two levels above the executable
func resolvePath(path string) string {
	if path == "" {
		path = migration.DefaultPath
		if _, err := os.Stat(path); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", migration.DefaultPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Atelier database tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down [n]          Roll back n migrations (default 1)
  goto <version>    Migrate up or down to a version
  version           Show the current version
  force <version>   Set the version without running SQL (clears the dirty flag)
  create <name>     Write an empty up/down pair
  list              List migration files
  seed-taxonomy     Load the fixed category hierarchy
  seed-admin        Create the bootstrap ADMIN from bootstrap.admin_* settings

Flags:
  -path string       Migrations directory (default: ./migrations)
  -log-level string  debug, info, warn or error (default: info)
`)
}
