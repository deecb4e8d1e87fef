package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/trigg3rX/mining-cli/internal/config"
)

// Set at build time with -ldflags "-X main.Version=..."
var (
	Version   = "v0.1.0"
	BuildDate = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "miner",
		Usage: "Privacy-preserving deposit and withdrawal mining",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Usage: "run a single mode (mining, claim, exit, export, check-update); interactive when absent",
			},
			&cli.StringFlag{
				Name:  "settings",
				Usage: "path to the settings file",
				Value: config.DefaultSettingsPath,
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "path to the operator env file",
				Value: config.DefaultEnvPath,
			},
		},
		Action: runMiner,
		Commands: []*cli.Command{
			VersionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Display version information",
		Action: displayVersion,
	}
}

func displayVersion(c *cli.Context) error {
	fmt.Println("Mining CLI")
	fmt.Printf("Version:      %s\n", Version)
	fmt.Printf("Build Date:   %s\n", BuildDate)
	return nil
}
