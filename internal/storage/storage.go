package storage

import (
	"context"

	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage is the entity store: key-indexed persistence for users,
// stories, progress, missions and character evolutions. Read
// operations return (nil, nil) on miss, never an error. Create
// operations assign a monotonically increasing id at insertion time.
// Save operations are upserts keyed by primary id, or by
// (userID, characterID) for character evolutions.
type Storage interface {
	HealthChecker
	Closer

	// Users
	GetUser(ctx context.Context, id string) (*game.User, error)
	SaveUser(ctx context.Context, u *game.User) error

	// Stories
	CreateStory(ctx context.Context, s *story.Story) error
	GetStory(ctx context.Context, id int64) (*story.Story, error)
	GetUserStories(ctx context.Context, userID string) ([]*story.Story, error)

	// Progress
	GetProgress(ctx context.Context, userID string) (*game.UserProgress, error)
	SaveProgress(ctx context.Context, p *game.UserProgress) error

	// Missions
	CreateMission(ctx context.Context, m *game.Mission) error
	GetMission(ctx context.Context, id int64) (*game.Mission, error)
	SaveMission(ctx context.Context, m *game.Mission) error
	GetActiveMissions(ctx context.Context, userID string) ([]*game.Mission, error)

	// Character evolutions
	GetCharacter(ctx context.Context, userID, characterID string) (*game.CharacterEvolution, error)
	SaveCharacter(ctx context.Context, ce *game.CharacterEvolution) error
	ListCharacters(ctx context.Context, userID string) ([]*game.CharacterEvolution, error)
}
