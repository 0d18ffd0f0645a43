package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	characterCmd "github.com/andrescamacho/colonysim-go/internal/application/character/commands"
	characterQuery "github.com/andrescamacho/colonysim-go/internal/application/character/queries"
)

// NewCharacterCommand creates the character command with subcommands
func NewCharacterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Manage tracked characters",
		Long: `Manage the characters whose colonies are tracked.

Characters are stored in the local database together with the access token
used to fetch their colony layouts.

Examples:
  colonysim character register --id 90000001 --name "Ada" --token <access-token>
  colonysim character list
  colonysim character info --character-id 90000001`,
	}

	cmd.AddCommand(newCharacterRegisterCommand())
	cmd.AddCommand(newCharacterListCommand())
	cmd.AddCommand(newCharacterInfoCommand())

	return cmd
}

func newCharacterRegisterCommand() *cobra.Command {
	var (
		id          int64
		name        string
		token       string
		corporation string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a character and its access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id <= 0 {
				return fmt.Errorf("--id flag is required")
			}
			if name == "" {
				return fmt.Errorf("--name flag is required")
			}
			if token == "" {
				return fmt.Errorf("--token flag is required")
			}

			app, err := openLocalApp()
			if err != nil {
				return err
			}
			defer app.Close()

			metadata := make(map[string]interface{})
			if corporation != "" {
				metadata["corporation"] = corporation
			}

			response, err := app.mediator.Send(app.ctx, &characterCmd.RegisterCharacterCommand{
				CharacterID: id,
				Name:        name,
				AccessToken: token,
				Metadata:    metadata,
			})
			if err != nil {
				return fmt.Errorf("failed to register character: %w", err)
			}
			result := response.(*characterCmd.RegisterCharacterResponse)

			fmt.Println("✓ Character registered successfully")
			fmt.Printf("  Name:         %s\n", result.Character.Name)
			fmt.Printf("  Character ID: %d\n", result.Character.ID.Value())
			fmt.Printf("\nSet as default character with: colonysim config set-character --character-id %d\n", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Character ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Character name (required)")
	cmd.Flags().StringVar(&token, "token", "", "API access token (required)")
	cmd.Flags().StringVar(&corporation, "corporation", "", "Corporation name (optional)")

	return cmd
}

func newCharacterListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openLocalApp()
			if err != nil {
				return err
			}
			defer app.Close()

			response, err := app.mediator.Send(app.ctx, &characterQuery.ListCharactersQuery{})
			if err != nil {
				return err
			}
			characters := response.(*characterQuery.ListCharactersResponse).Characters

			if len(characters) == 0 {
				fmt.Println("No characters registered.")
				fmt.Println("\nRegister one with: colonysim character register --id <id> --name <name> --token <token>")
				return nil
			}

			sort.Slice(characters, func(i, j int) bool {
				return characters[i].ID.Value() < characters[j].ID.Value()
			})

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTOKEN")
			fmt.Fprintln(w, "--\t----\t-----")
			for _, c := range characters {
				tokenState := "missing"
				if c.HasToken() {
					tokenState = "set"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID.Value(), c.Name, tokenState)
			}
			w.Flush()

			return nil
		},
	}
}

func newCharacterInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show one character",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveCharacterID()
			if err != nil {
				return err
			}

			app, err := openLocalApp()
			if err != nil {
				return err
			}
			defer app.Close()

			response, err := app.mediator.Send(app.ctx, &characterQuery.GetCharacterQuery{CharacterID: &id})
			if err != nil {
				return fmt.Errorf("failed to get character: %w", err)
			}
			c := response.(*characterQuery.GetCharacterResponse).Character

			fmt.Println("Character Information")
			fmt.Println("=====================")
			fmt.Printf("  Character ID: %d\n", c.ID.Value())
			fmt.Printf("  Name:         %s\n", c.Name)
			fmt.Printf("  Token:        %v\n", c.HasToken())
			if !c.TokenExpires.IsZero() {
				fmt.Printf("  Expires:      %s\n", c.TokenExpires.Format("2006-01-02 15:04"))
			}
			for k, v := range c.Metadata {
				fmt.Printf("  %-13s %v\n", k+":", v)
			}
			return nil
		},
	}
}
