package main

import (
	"context"
	"errors"
	"os"

	"github.com/martinsuchenak/thingprobe/cmd/device"
	"github.com/martinsuchenak/thingprobe/cmd/server"
	"github.com/martinsuchenak/thingprobe/internal/log"
	"github.com/martinsuchenak/thingprobe/internal/probe"
	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "thingprobe",
		Version:     version,
		Usage:       "Probe a device's thing description",
		Description: "Fetch the thing description a device serves at http://host:port/ and check its id and title",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"THINGPROBE_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"THINGPROBE_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Configure(cmd.GetString("log-level"), cmd.GetString("log-format"))
			log.Trace("Starting", "version", version, "commit", commit, "date", date)
			return ctx, nil
		},
		Commands: append(device.Commands(), server.Command()),
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		// the verdict line has already been printed
		if !errors.Is(err, probe.ErrBaseTestFailed) {
			log.Error("Command execution failed", "error", err)
		}
		os.Exit(1)
	}
}
