package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"

	"github.com/gexx/gexx/internal/config"
	"github.com/gexx/gexx/internal/database"
	"github.com/gexx/gexx/internal/database/repository"
	"github.com/gexx/gexx/internal/logging"
	"github.com/gexx/gexx/internal/prefs"
	"github.com/gexx/gexx/internal/service"
)

var (
	app = kingpin.New("gexx", "Team inventory dashboard.")

	configPath = app.Flag("config", "Config file (TOML).").Short('c').Envar("GEXX_CONFIG").String()
	dbPath     = app.Flag("db", "Override database.path.").String()
	verbose    = app.Flag("verbose", "Log at debug level.").Short('v').Bool()

	// commandHandlers run the parsed command and report whether they
	// recognised it.
	commandHandlers []func(command string) bool
)

// env is what most commands need: config, logger, an open, migrated
// database and the services over it.
type env struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.Config
	log    *logrus.Logger
	db     *sql.DB
	prefs  prefs.Store

	users       *repository.UserRepo
	auth        *service.AuthService
	inventory   *service.InventoryService
	dashboard   *service.DashboardService
	ingest      *service.IngestService
	maintenance *service.MaintenanceService
}

func loadConfig() (config.Config, *logrus.Logger) {
	if *configPath != "" {
		kingpin.FatalIfError(os.Setenv("GEXX_CONFIG", *configPath), "config")
	}
	cfg, err := config.Load()
	kingpin.FatalIfError(err, "config")
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	log, err := logging.New(cfg.Log, os.Stderr)
	kingpin.FatalIfError(err, "logging")
	return cfg, log
}

func openEnv() *env {
	cfg, log := loadConfig()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	db, err := database.Open(cfg.Database.Path)
	kingpin.FatalIfError(err, "open db")
	kingpin.FatalIfError(database.MigrateDB(db, cfg.Database.Migrations), "migrate")

	store, err := prefs.DefaultStore()
	kingpin.FatalIfError(err, "prefs")

	users := repository.NewUserRepo(db)
	inv := &service.InventoryService{
		DB:                db,
		Items:             repository.NewItemRepo(db),
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		Log:               log,
		Categories: func(teamID string) []string {
			cats, err := store.TeamCategories(teamID)
			if err != nil {
				log.WithError(err).Warn("load team categories")
			}
			return cats
		},
	}
	return &env{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		log:    log,
		db:     db,
		prefs:  store,
		users:  users,
		auth: &service.AuthService{
			DB:         db,
			Users:      users,
			Teams:      repository.NewTeamRepo(db),
			SeedSample: cfg.Inventory.SeedSample,
			Log:        log,
		},
		inventory:   inv,
		dashboard:   &service.DashboardService{Inventory: inv},
		ingest:      &service.IngestService{Inventory: inv},
		maintenance: &service.MaintenanceService{DB: db},
	}
}

func (e *env) Close() {
	e.cancel()
	_ = e.db.Close()
}

// accountFor resolves a user's account by email for the local commands.
func (e *env) accountFor(email string) service.Account {
	u, err := e.users.ByEmail(e.ctx, email)
	kingpin.FatalIfError(err, "find user")
	if u == nil {
		kingpin.Fatalf("no user with email %s", email)
	}
	acct, err := e.auth.Lookup(e.ctx, u.ID, "")
	kingpin.FatalIfError(err, "load account")
	return acct
}

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	for _, handler := range commandHandlers {
		if handler(command) {
			return
		}
	}
	fmt.Fprintf(os.Stderr, "unhandled command %q\n", command)
	os.Exit(2)
}
