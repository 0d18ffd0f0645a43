package planetary

import (
	"context"

	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// SnapshotProvider fetches raw colony snapshots. Implementations own transport,
// retry and timeout policy; a returned error is recoverable for that colony only.
type SnapshotProvider interface {
	FetchSnapshot(ctx context.Context, ref ColonyRef, forceRefresh bool) (*Snapshot, error)
	ListColonies(ctx context.Context, owner shared.CharacterID) ([]ColonyRef, error)
}

// ReferenceProvider serves static recipe and type metadata. Ids that are not
// found are simply absent from the returned maps.
type ReferenceProvider interface {
	Recipes(ctx context.Context, ids []RecipeID) (map[RecipeID]*Recipe, error)
	Types(ctx context.Context, ids []TypeID) (map[TypeID]*ResourceType, error)
}

// ReferenceRepository is a writable reference store, filled by reference imports
type ReferenceRepository interface {
	ReferenceProvider
	SaveTypes(ctx context.Context, types []*ResourceType) error
	SaveRecipes(ctx context.Context, recipes []*Recipe) error
	ListRecipes(ctx context.Context) ([]*Recipe, error)
}
