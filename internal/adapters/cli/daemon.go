package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colonysim-go/internal/infrastructure/config"
	"github.com/andrescamacho/colonysim-go/internal/infrastructure/pidfile"
)

// NewDaemonCommand creates the daemon command with subcommands
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Inspect or stop the local daemon process",
	}

	cmd.AddCommand(newDaemonStatusCommand())
	cmd.AddCommand(newDaemonStopCommand())

	return cmd
}

func daemonPIDFile() *pidfile.PIDFile {
	cfg := config.LoadConfigOrDefault("")
	return pidfile.New(cfg.Daemon.PIDFile)
}

func newDaemonStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon process is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			pf := daemonPIDFile()
			if pid, ok := pf.Running(); ok {
				fmt.Printf("✓ Daemon running (PID %d, pid file %s)\n", pid, pf.Path())
				return nil
			}
			fmt.Printf("Daemon is not running (pid file %s)\n", pf.Path())
			return nil
		},
	}
}

func newDaemonStopCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := daemonPIDFile().KillExisting(timeout)
			if errors.Is(err, pidfile.ErrNotRunning) {
				fmt.Println("Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println("✓ Daemon stopped")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Time to wait before forcing the daemon down")

	return cmd
}
