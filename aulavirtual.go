package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aulavirtual/cmd"
	"github.com/aulavirtual/internal/logging"
)

const (
	version = "0.1.0"
)

func main() {
	logging.Setup(os.Getenv("AULAVIRTUAL_LOG_LEVEL"))

	app := &cli.App{
		Name:    "aulavirtual",
		Usage:   "Learning platform backend: courses, lessons, enrollments and chat",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
		},
		Commands: []*cli.Command{
			cmd.APICommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
