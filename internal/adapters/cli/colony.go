package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colonysim-go/internal/adapters/grpc"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
)

// NewColonyCommand creates the colony command with subcommands
func NewColonyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colony",
		Short: "Summarize and simulate colonies",
		Long: `Project colonies forward in time through the daemon.

Examples:
  colonysim colony list
  colonysim colony list --character-id 90000001 --at 2026-01-02T15:04:05Z
  colonysim colony summary --colony 40000001 --tree
  colonysim colony refresh --colony 40000001
  colonysim colony watch --interval 1m`,
	}

	cmd.AddCommand(newColonyListCommand())
	cmd.AddCommand(newColonySummaryCommand())
	cmd.AddCommand(newColonyRefreshCommand())
	cmd.AddCommand(newColonyWatchCommand())

	return cmd
}

// signalContext is cancelled on Ctrl+C so a running aggregation stops early
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newColonyListCommand() *cobra.Command {
	var (
		at      string
		all     bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List colony summaries as they are computed",
		Long: `Summarize every colony of a character. Rows are printed as each
colony finishes, so slow colonies do not hold back the others.

Use --all to cover every registered character.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTarget(at)
			if err != nil {
				return err
			}

			req := grpc.ListRequest{Target: target, ForceRefresh: refresh}
			if !all {
				id, err := resolveCharacterID()
				if err != nil {
					return err
				}
				req.CharacterIDs = []int64{id}
			}

			client, err := grpc.NewDaemonClientGRPC(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := signalContext()
			defer cancel()

			return streamTable(ctx, client, req)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Target time (RFC3339, default now)")
	cmd.Flags().BoolVar(&all, "all", false, "Include every registered character")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass cached snapshots")

	return cmd
}

func streamTable(ctx context.Context, client *grpc.DaemonClientGRPC, req grpc.ListRequest) error {
	table := NewResultTable(os.Stdout, time.Now())
	count, failed := 0, 0
	err := client.StreamColonySummaries(ctx, req, func(result dtos.ColonyResultDTO) {
		count++
		if result.Error != "" {
			failed++
		}
		table.Add(result)
	})
	if err != nil {
		if ctx.Err() != nil {
			fmt.Printf("\nCancelled after %d colonies\n", count)
			return nil
		}
		return fmt.Errorf("failed to list colonies: %w", err)
	}

	fmt.Printf("\n%d colonies, %d failed\n", count, failed)
	return nil
}

func newColonySummaryCommand() *cobra.Command {
	var (
		colonyID int64
		at       string
		refresh  bool
		tree     bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the projected state of one colony",
		RunE: func(cmd *cobra.Command, args []string) error {
			if colonyID <= 0 {
				return fmt.Errorf("--colony flag is required")
			}
			target, err := parseTarget(at)
			if err != nil {
				return err
			}
			id, err := resolveCharacterID()
			if err != nil {
				return err
			}

			client, err := grpc.NewDaemonClientGRPC(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := signalContext()
			defer cancel()

			summary, err := client.GetColonySummary(ctx, grpc.SummaryRequest{
				CharacterID:  id,
				ColonyID:     colonyID,
				Target:       target,
				ForceRefresh: refresh,
			})
			if err != nil {
				return err
			}

			if tree {
				formatter := NewTreeFormatter(true, false)
				fmt.Print(formatter.FormatTree(summary))
				fmt.Println(formatter.FormatTreeSummary(summary))
				return nil
			}
			WriteSummary(os.Stdout, summary, time.Now(), detailed || verbose)
			return nil
		},
	}

	cmd.Flags().Int64Var(&colonyID, "colony", 0, "Colony (planet) ID (required)")
	cmd.Flags().StringVar(&at, "at", "", "Target time (RFC3339, default now)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass cached snapshots")
	cmd.Flags().BoolVar(&tree, "tree", false, "Render pins as a tree")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show every pin")

	return cmd
}

func newColonyRefreshCommand() *cobra.Command {
	var colonyID int64

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch a fresh snapshot of one colony",
		RunE: func(cmd *cobra.Command, args []string) error {
			if colonyID <= 0 {
				return fmt.Errorf("--colony flag is required")
			}
			id, err := resolveCharacterID()
			if err != nil {
				return err
			}

			client, err := grpc.NewDaemonClientGRPC(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			resp, err := client.RefreshSnapshot(ctx, grpc.RefreshRequest{CharacterID: id, ColonyID: colonyID})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Colony %d refreshed at %s\n", colonyID, resp.RefreshedAt.Format(time.RFC3339))
			WriteSummary(os.Stdout, resp.Summary, time.Now(), verbose)
			return nil
		},
	}

	cmd.Flags().Int64Var(&colonyID, "colony", 0, "Colony (planet) ID (required)")

	return cmd
}

func newColonyWatchCommand() *cobra.Command {
	var (
		interval time.Duration
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-list colonies periodically until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval < time.Second {
				return fmt.Errorf("--interval must be at least 1s")
			}

			req := grpc.ListRequest{}
			if !all {
				id, err := resolveCharacterID()
				if err != nil {
					return err
				}
				req.CharacterIDs = []int64{id}
			}

			client, err := grpc.NewDaemonClientGRPC(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := signalContext()
			defer cancel()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				fmt.Printf("=== %s ===\n", time.Now().Format(time.RFC3339))
				if err := streamTable(ctx, client, req); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				}

				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Time between listings")
	cmd.Flags().BoolVar(&all, "all", false, "Include every registered character")

	return cmd
}
