package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/martinsuchenak/thingprobe/internal/config"
	"github.com/martinsuchenak/thingprobe/internal/log"
	"github.com/martinsuchenak/thingprobe/internal/model"
	"github.com/martinsuchenak/thingprobe/internal/probe"
	"github.com/martinsuchenak/thingprobe/internal/prompt"
	"github.com/martinsuchenak/thingprobe/internal/thing"
	"github.com/paularlott/cli"
)

// Commands returns the device-facing commands
func Commands() []*cli.Command {
	return []*cli.Command{
		BaseTestCommand(),
		DescribeCommand(),
	}
}

// BaseTestCommand fetches the thing description and checks id and title
func BaseTestCommand() *cli.Command {
	return newBaseTestCommand(os.Stdin, os.Stdout, os.Stderr)
}

// newBaseTestCommand reads missing target fields from in and prompts on
// promptOut. Diagnostics and the verdict go to out.
func newBaseTestCommand(in io.Reader, out, promptOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "base-test",
		Usage:       "Check a device's thing description",
		Description: "GET http://host:port/, expect 200, and read id and title from the description",
		Flags:       config.ProbeFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, target, err := resolveTarget(cmd, in, promptOut)
			if err != nil {
				return err
			}

			client := thing.NewClient(target, thing.WithTimeout(cfg.Timeout), thing.WithDiagnostics(out))
			_, err = probe.Run(ctx, client, out)
			return err
		},
	}
}

// DescribeCommand prints the thing description of a device
func DescribeCommand() *cli.Command {
	return newDescribeCommand(os.Stdin, os.Stdout, os.Stderr)
}

func newDescribeCommand(in io.Reader, out, promptOut io.Writer) *cli.Command {
	flags := append(config.ProbeFlags(), &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the description as JSON",
	})

	return &cli.Command{
		Name:        "describe",
		Usage:       "Show a device's thing description",
		Description: "Fetch http://host:port/ and print its id, title, types, links and properties",
		Flags:       flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, target, err := resolveTarget(cmd, in, promptOut)
			if err != nil {
				return err
			}

			client := thing.NewClient(target, thing.WithTimeout(cfg.Timeout))
			desc, err := client.FetchBase(ctx)
			if err != nil {
				return err
			}

			return printDescription(out, desc, cmd.GetBool("json"))
		},
	}
}

// resolveTarget merges flags and environment, then prompts for whatever is
// still missing. It runs before any network activity.
func resolveTarget(cmd *cli.Command, in io.Reader, promptOut io.Writer) (*config.Config, model.Target, error) {
	cfg := config.Load(config.ProbeOptions(cmd))

	target := cfg.Target()
	if !cfg.HasTarget() {
		var err error
		target, err = prompt.Target(in, promptOut, target)
		if err != nil {
			return nil, model.Target{}, fmt.Errorf("reading target: %w", err)
		}
	}

	log.Debug("Target resolved", "host", target.Host, "port", target.Port, "timeout", cfg.Timeout)
	return cfg, target, nil
}

func printDescription(w io.Writer, desc model.Description, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	}
	_, err := io.WriteString(w, probe.Summary(desc))
	return err
}
