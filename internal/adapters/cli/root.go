package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	socketPath  string
	characterID int64
	verbose     bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colonysim",
		Short: "Colony simulator CLI - Project planetary colony production",
		Long: `colonysim projects the state of planetary colonies forward in time.

Colony commands talk to the daemon over its Unix socket; character and
reference commands work directly on the local database.

Examples:
  colonysim character register --id 90000001 --name "Ada" --token <access-token>
  colonysim reference import --file reference.json
  colonysim colony list
  colonysim colony summary --colony 40000001 --at 2026-01-02T15:04:05Z
  colonysim colony refresh --colony 40000001
  colonysim colony watch --interval 30s`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon Unix socket")
	rootCmd.PersistentFlags().Int64Var(&characterID, "character-id", 0,
		"Character ID (defaults to the configured default character)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewColonyCommand())
	rootCmd.AddCommand(NewCharacterCommand())
	rootCmd.AddCommand(NewReferenceCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewDaemonCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("COLONYSIM_SOCKET"); path != "" {
		return path
	}
	return "/tmp/colonysim-daemon.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
