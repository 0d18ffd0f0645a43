package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	characterQuery "github.com/andrescamacho/colonysim-go/internal/application/character/queries"
	"github.com/andrescamacho/colonysim-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage colonysim configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (CS_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default character) are stored in ~/.colonysim/config.json

Examples:
  colonysim config show
  colonysim config set-character --character-id 90000001
  colonysim config clear-character`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCharacterCommand())
	cmd.AddCommand(newConfigClearCharacterCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig("")
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Println("colonysim Configuration")
			fmt.Println("=======================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:        %s\n", userConfigHandler.Path())
			if userCfg.DefaultCharacterID != nil {
				fmt.Printf("  Default Character:  %d %s\n", *userCfg.DefaultCharacterID, userCfg.DefaultCharacterName)
			} else {
				fmt.Printf("  Default Character:  (not set)\n")
			}

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:               %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:                %s\n", MaskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:               %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:               %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				fmt.Printf("  Database:           %s\n", cfg.Database.Name)
				fmt.Printf("  User:               %s\n", cfg.Database.User)
			}

			fmt.Println("\nGame API:")
			fmt.Printf("  Base URL:           %s\n", cfg.ESI.BaseURL)
			fmt.Printf("  Timeout:            %s\n", cfg.ESI.Timeout)
			fmt.Printf("  Rate Limit:         %d req/s (burst: %d)\n", cfg.ESI.RateLimit.Requests, cfg.ESI.RateLimit.Burst)
			fmt.Printf("  Max Retries:        %d\n", cfg.ESI.Retry.MaxAttempts)
			fmt.Printf("  Snapshot Max Age:   %s\n", cfg.ESI.SnapshotMaxAge)

			fmt.Println("\nSimulation:")
			fmt.Printf("  Concurrency:        %d\n", cfg.Aggregator.Concurrency)
			fmt.Printf("  Reuse Window:       %s\n", cfg.Aggregator.ReuseWindow)
			fmt.Printf("  Expiring Soon:      %s\n", cfg.Aggregator.ExpiringSoon)
			fmt.Printf("  Decay Factor:       %g\n", cfg.Simulation.DecayFactor)
			fmt.Printf("  Yield Floor:        %d\n", cfg.Simulation.YieldFloor)

			fmt.Println("\nCache:")
			fmt.Printf("  Backend:            %s\n", cfg.Cache.Backend)
			if cfg.Cache.Backend == "redis" {
				fmt.Printf("  Address:            %s\n", cfg.Cache.Addr)
			}

			fmt.Println("\nDaemon:")
			fmt.Printf("  Socket Path:        %s\n", cfg.Daemon.SocketPath)
			fmt.Printf("  PID File:           %s\n", cfg.Daemon.PIDFile)
			fmt.Printf("  Refresh Interval:   %s\n", cfg.Daemon.RefreshInterval)
			if cfg.HTTP.Enabled {
				fmt.Printf("  HTTP Address:       %s\n", cfg.HTTP.Address)
			}

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:              %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:             %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:             %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

func newConfigSetCharacterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-character",
		Short: "Set default character",
		Long: `Set the character used when --character-id is not given.
The character must already be registered.

Example:
  colonysim config set-character --character-id 90000001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if characterID <= 0 {
				return fmt.Errorf("--character-id flag is required")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			app, err := openLocalApp()
			if err != nil {
				return err
			}
			defer app.Close()

			id := characterID
			response, err := app.mediator.Send(app.ctx, &characterQuery.GetCharacterQuery{CharacterID: &id})
			if err != nil {
				return fmt.Errorf("character %d not found", characterID)
			}
			c := response.(*characterQuery.GetCharacterResponse).Character

			if err := userConfigHandler.SetDefaultCharacter(c.ID.Value(), c.Name); err != nil {
				return fmt.Errorf("failed to set default character: %w", err)
			}

			fmt.Println("✓ Default character set successfully")
			fmt.Printf("  Character ID: %d\n", c.ID.Value())
			fmt.Printf("  Name:         %s\n", c.Name)
			fmt.Println("\nOverride with --character-id.")
			return nil
		},
	}
}

func newConfigClearCharacterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-character",
		Short: "Clear default character setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			if err := userConfigHandler.ClearDefaultCharacter(); err != nil {
				return fmt.Errorf("failed to clear default character: %w", err)
			}

			fmt.Println("✓ Default character cleared")
			fmt.Println("\nYou must now specify --character-id for colony commands.")
			return nil
		},
	}
}

// MaskPassword replaces the password of a connection URL with "xxxxx".
// Strings that are not URLs with credentials are returned unchanged.
func MaskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
