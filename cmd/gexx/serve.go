package main

import (
	kingpin "github.com/alecthomas/kingpin/v2"

	"github.com/gexx/gexx/internal/secrets"
	"github.com/gexx/gexx/internal/service"
	"github.com/gexx/gexx/internal/web"
)

var (
	serveCommand = app.Command("serve", "Run the web dashboard.")
	serveListen  = serveCommand.Flag("listen", "Override server.listen.").String()
)

func sessionKey(secret string) []byte {
	if secret != "" {
		return []byte(secret)
	}
	store, err := secrets.DefaultStore()
	kingpin.FatalIfError(err, "secrets")
	key, err := store.SessionKey()
	kingpin.FatalIfError(err, "session key")
	return key
}

func doServe() {
	e := openEnv()
	defer e.Close()

	addr := e.cfg.Server.Listen
	if *serveListen != "" {
		addr = *serveListen
	}
	srv, err := web.New(web.Deps{
		Config:     e.cfg,
		Log:        e.log,
		Auth:       e.auth,
		Inventory:  e.inventory,
		Dashboard:  e.dashboard,
		Export:     service.ExportService{},
		SessionKey: sessionKey(e.cfg.Server.SessionSecret),
	})
	kingpin.FatalIfError(err, "server")
	defer srv.Close()

	kingpin.FatalIfError(srv.Start(e.ctx, addr), "serve")
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		switch command {
		case serveCommand.FullCommand():
			doServe()
		default:
			return false
		}
		return true
	})
}
