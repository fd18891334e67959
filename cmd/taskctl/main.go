// Command taskctl is the terminal client of the task API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskManager/internal/client"
	"taskManager/internal/config"
	"taskManager/internal/logger"
	"taskManager/internal/session"
)

func main() {
	var (
		configPath = flag.String("config", "config.yml", "path to YAML config")
		serverURL  = flag.String("server", "", "task API URL (overrides api.base_url)")
		verbose    = flag.Bool("verbose", false, "log requests to stdout")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logOpts := cfg.Logging.Options()
	if !*verbose {
		logOpts.Level = "error"
	}
	if err := logger.Init(logOpts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	baseURL := cfg.API.BaseURL
	if *serverURL != "" {
		baseURL = *serverURL
	}

	store := session.NewFileStore(cfg.Session.Path)
	api := client.New(baseURL, store, client.WithTimeout(cfg.API.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{tasks: api, accounts: api, session: store, out: os.Stdout, errOut: os.Stderr}
	if err := c.dispatch(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		logger.Sync()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `taskctl - task manager CLI

Usage:
  taskctl [flags] <command> [args]

Flags:
  --config  <path>   YAML config (default: config.yml)
  --server  <url>    task API URL (default: api.base_url)
  --verbose          log requests

Commands:
  register --name N --email E --password P --confirm P
  login --email E --password P
  logout
  tasks                               list tasks
  task show <id>                      show one task
  task create --title T --description D --due YYYY-MM-DD [--status S] [--priority P]
  task update <id> [--title T] [--description D] [--due YYYY-MM-DD] [--status S] [--priority P]
  task delete <id>
`)
}
