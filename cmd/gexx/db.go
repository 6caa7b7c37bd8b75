package main

import (
	"fmt"

	kingpin "github.com/alecthomas/kingpin/v2"

	"github.com/gexx/gexx/internal/config"
	"github.com/gexx/gexx/internal/database"
)

var (
	migrateCommand = app.Command("migrate", "Manage the database schema.")
	migrateUp      = migrateCommand.Command("up", "Apply all migrations.")
	migrateDown    = migrateCommand.Command("down", "Roll back all migrations.")
	migrateVersion = migrateCommand.Command("version", "Print the schema version.")

	configCommand = app.Command("config", "Manage the config file.")
	configInit    = configCommand.Command("init", "Write the effective config to the config file.")

	resetCommand = app.Command("reset", "Delete data. Without --email every table is emptied.")
	resetEmail   = resetCommand.Flag("email", "Only reset this user's team inventory.").String()
	resetYes     = resetCommand.Flag("yes", "Do not ask for confirmation.").Bool()
)

func doMigrate(cfg config.Config, command string) {
	switch command {
	case migrateUp.FullCommand():
		kingpin.FatalIfError(database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations), "migrate up")
		fmt.Println("migrations applied")
	case migrateDown.FullCommand():
		kingpin.FatalIfError(database.RollbackMigrations(cfg.Database.Path, cfg.Database.Migrations), "migrate down")
		fmt.Println("migrations rolled back")
	case migrateVersion.FullCommand():
		v, dirty, err := database.MigrationVersion(cfg.Database.Path, cfg.Database.Migrations)
		kingpin.FatalIfError(err, "migrate version")
		fmt.Printf("version %d dirty=%v\n", v, dirty)
	}
}

func doReset() {
	if !*resetYes {
		kingpin.Fatalf("reset deletes data; pass --yes to confirm")
	}
	e := openEnv()
	defer e.Close()

	if *resetEmail != "" {
		acct := e.accountFor(*resetEmail)
		kingpin.FatalIfError(e.maintenance.ResetTeam(e.ctx, acct.Team.TeamID), "reset team")
		fmt.Printf("inventory of %s cleared\n", acct.Team.TeamName)
		return
	}
	kingpin.FatalIfError(e.maintenance.Reset(e.ctx), "reset")
	fmt.Println("database cleared")
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		switch command {
		case migrateUp.FullCommand(), migrateDown.FullCommand(), migrateVersion.FullCommand():
			cfg, _ := loadConfig()
			doMigrate(cfg, command)
		case configInit.FullCommand():
			cfg, _ := loadConfig()
			kingpin.FatalIfError(config.Save(cfg), "write config")
			fmt.Println("config written")
		case resetCommand.FullCommand():
			doReset()
		default:
			return false
		}
		return true
	})
}
