// Command catalogctl manages a store's catalog from the terminal through the
// catalog REST API.
package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/princinho/storecatalog/admin"
	"github.com/princinho/storecatalog/config"
	"github.com/princinho/storecatalog/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is built once per invocation, after flags are parsed.
type app struct {
	client  *admin.Client
	manager *admin.Manager
	console *console
	log     *zap.Logger
}

func newApp() (*app, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, err
	}
	log := logger.Must(cfg.Debug)

	var tokens admin.TokenSource = admin.StaticToken(cfg.Token)
	if cfg.Token == "" {
		tokens = &admin.LoginTokenSource{BaseURL: cfg.APIURL, Email: cfg.Email, Password: cfg.Password}
	}
	client := admin.NewClient(cfg.APIURL, tokens, admin.WithLogger(log))
	con := newConsole(os.Stdin, os.Stdout)
	return &app{
		client:  client,
		manager: admin.NewManager(client, con, con, nil),
		console: con,
		log:     log,
	}, nil
}
