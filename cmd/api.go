package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/aulavirtual/internal/api"
	"github.com/aulavirtual/internal/config"
	"github.com/aulavirtual/internal/database"
)

// APICommand returns the CLI command for starting the API server
func APICommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Start the Aula Virtual API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if c.IsSet("port") {
				cfg.Server.Port = c.Int("port")
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			databaseURL, err := database.LoadDatabaseURL()
			if err != nil {
				return fmt.Errorf("failed to resolve database URL: %w", err)
			}

			db, err := database.NewDB()
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			server, err := api.NewServer(cfg, db, databaseURL)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			fmt.Printf("Starting Aula Virtual API server on port %d...\n", cfg.Server.Port)
			return server.Start()
		},
	}
}
