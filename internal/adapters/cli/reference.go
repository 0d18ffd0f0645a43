package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
	referenceCmd "github.com/andrescamacho/colonysim-go/internal/application/reference/commands"
	referenceQuery "github.com/andrescamacho/colonysim-go/internal/application/reference/queries"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// NewReferenceCommand creates the reference command with subcommands
func NewReferenceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Manage schematic and type reference data",
		Long: `Load and inspect the static reference data used to resolve factory
schematics and product names.

Examples:
  colonysim reference import --file reference.json
  colonysim reference show --schematic 66`,
	}

	cmd.AddCommand(newReferenceImportCommand())
	cmd.AddCommand(newReferenceShowCommand())

	return cmd
}

func newReferenceImportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a reference data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file flag is required")
			}

			app, err := openLocalApp()
			if err != nil {
				return err
			}
			defer app.Close()

			response, err := app.mediator.Send(app.ctx, &referenceCmd.ImportReferenceCommand{Path: file})
			if err != nil {
				return fmt.Errorf("failed to import reference data: %w", err)
			}
			result := response.(*referenceCmd.ImportReferenceResponse)

			fmt.Println("✓ Reference data imported")
			fmt.Printf("  Types:      %d\n", result.Types)
			fmt.Printf("  Schematics: %d\n", result.Schematics)
			if result.Skipped > 0 {
				fmt.Printf("  Skipped:    %d\n", result.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Reference JSON file (required)")

	return cmd
}

func newReferenceShowCommand() *cobra.Command {
	var schematicID int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a schematic and its inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schematicID <= 0 {
				return fmt.Errorf("--schematic flag is required")
			}

			app, err := openLocalApp()
			if err != nil {
				return err
			}
			defer app.Close()

			response, err := app.mediator.Send(app.ctx, &referenceQuery.GetRecipeQuery{RecipeID: planetary.RecipeID(schematicID)})
			if err != nil {
				return err
			}
			result := response.(*referenceQuery.GetRecipeResponse)

			fmt.Print(NewTreeFormatter(false, false).FormatRecipeTree(dtos.RecipeToDTO(result.Recipe, result.Types)))
			return nil
		},
	}

	cmd.Flags().Int64Var(&schematicID, "schematic", 0, "Schematic ID (required)")

	return cmd
}
