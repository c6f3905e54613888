package commands

import (
	"fmt"
	"os"

	"go-inventory-api/internal/bootstrap"
	"go-inventory-api/internal/config"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"
	"go-inventory-api/pkg/jwt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Global flags
	dbOverride string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "inventoryctl",
	Short: "Operate the inventory database from the command line",
	Long: `inventoryctl works directly against the inventory database configured
through the same environment (.env, DB_DRIVER, DB_FILE, DATABASE_URL) as the API.

Examples:
  inventoryctl export -o products.csv
  inventoryctl import products.csv
  inventoryctl stats
  inventoryctl reset-password admin@example.com newsecret`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "Database file or URL (overrides DB_FILE / DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// services is the part of the API stack the commands need.
type services struct {
	db         *gorm.DB
	log        *zap.Logger
	inventory  service.InventoryService
	statistics service.StatisticsService
	auth       service.AuthService
}

func (s *services) Close() {
	bootstrap.Close(s.db)
	s.log.Sync()
}

func openServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbOverride != "" {
		if cfg.Database.Driver == "postgres" {
			cfg.Database.URL = dbOverride
		} else {
			cfg.Database.File = dbOverride
		}
	}
	if !verbose {
		cfg.Logger.Level = "warn"
	}

	log, err := bootstrap.Logger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := bootstrap.Database(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	products := repository.NewProductRepo(db)
	audit := repository.NewAuditRepo(db)

	return &services{
		db:         db,
		log:        log,
		inventory:  service.NewInventoryService(products, audit, db, nil, log, cfg.Server.UploadDir),
		statistics: service.NewStatisticsService(products, audit, nil, log),
		auth:       service.NewAuthService(repository.NewUserRepo(db), jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL), log),
	}, nil
}
