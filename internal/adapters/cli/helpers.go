package cli

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/colonysim-go/internal/adapters/logging"
	"github.com/andrescamacho/colonysim-go/internal/adapters/persistence"
	characterCmd "github.com/andrescamacho/colonysim-go/internal/application/character/commands"
	characterQuery "github.com/andrescamacho/colonysim-go/internal/application/character/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
	referenceCmd "github.com/andrescamacho/colonysim-go/internal/application/reference/commands"
	referenceQuery "github.com/andrescamacho/colonysim-go/internal/application/reference/queries"
	"github.com/andrescamacho/colonysim-go/internal/infrastructure/config"
	"github.com/andrescamacho/colonysim-go/internal/infrastructure/database"
)

// resolveCharacterID resolves the character from flags or defaults.
// Priority: --character-id flag > user config default.
func resolveCharacterID() (int64, error) {
	if characterID > 0 {
		return characterID, nil
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return 0, fmt.Errorf("no character specified and failed to load user config: %w", err)
	}

	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return 0, fmt.Errorf("no character specified and failed to load user config: %w", err)
	}

	if userCfg.DefaultCharacterID != nil {
		return *userCfg.DefaultCharacterID, nil
	}

	return 0, fmt.Errorf("no character specified: use --character-id, or set a default with 'colonysim config set-character'")
}

// parseTarget parses an optional RFC3339 target time
func parseTarget(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --at value %q: expected RFC3339", value)
	}
	return &t, nil
}

// localApp is a mediator over the local database for commands that do not
// need the daemon
type localApp struct {
	db       *gorm.DB
	mediator common.Mediator
	ctx      context.Context
}

// openLocalApp loads config, connects to and migrates the database, and
// registers the character and reference handlers
func openLocalApp() (*localApp, error) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	characterRepo := persistence.NewGormCharacterRepository(db)
	referenceRepo := persistence.NewGormReferenceRepository(db)

	med := common.NewMediator()
	registrations := []error{
		mediator.RegisterHandler[*characterCmd.RegisterCharacterCommand](med, characterCmd.NewRegisterCharacterHandler(characterRepo)),
		mediator.RegisterHandler[*characterQuery.ListCharactersQuery](med, characterQuery.NewListCharactersHandler(characterRepo)),
		mediator.RegisterHandler[*characterQuery.GetCharacterQuery](med, characterQuery.NewGetCharacterHandler(characterRepo)),
		mediator.RegisterHandler[*referenceCmd.ImportReferenceCommand](med, referenceCmd.NewImportReferenceHandler(referenceRepo)),
		mediator.RegisterHandler[*referenceQuery.GetRecipeQuery](med, referenceQuery.NewGetRecipeHandler(referenceRepo)),
	}
	for _, err := range registrations {
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to register handler: %w", err)
		}
	}

	level := "warning"
	if verbose {
		level = "debug"
	}
	ctx := context.Background()
	if logger, err := logging.NewConsoleLogger(logging.Options{Level: level, Format: "text", Output: "stderr"}); err == nil {
		ctx = common.WithLogger(ctx, logger)
	}

	return &localApp{db: db, mediator: med, ctx: ctx}, nil
}

// Close releases the database connection
func (a *localApp) Close() {
	_ = database.Close(a.db)
}
