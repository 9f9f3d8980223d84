package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// MockStore is an in-memory Storage implementation for testing.
type MockStore struct {
	mu sync.Mutex

	users      map[string]*game.User
	stories    map[int64]*story.Story
	storyOrder map[string][]int64
	progress   map[string]*game.UserProgress
	missions   map[int64]*game.Mission
	missionIDs map[string][]int64
	characters map[string]*game.CharacterEvolution

	nextStoryID   int64
	nextMissionID int64

	pingError error

	// Per-operation error injection for failure-path tests.
	CreateStoryErr   error
	SaveProgressErr  error
	SaveCharacterErr error
	CreateMissionErr error
}

var _ Storage = (*MockStore)(nil)

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		users:      make(map[string]*game.User),
		stories:    make(map[int64]*story.Story),
		storyOrder: make(map[string][]int64),
		progress:   make(map[string]*game.UserProgress),
		missions:   make(map[int64]*game.Mission),
		missionIDs: make(map[string][]int64),
		characters: make(map[string]*game.CharacterEvolution),
	}
}

// SetPingError configures the mock to fail on ping.
func (m *MockStore) SetPingError(err error) {
	m.pingError = err
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.pingError
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) GetUser(ctx context.Context, id string) (*game.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *MockStore) SaveUser(ctx context.Context, u *game.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *MockStore) CreateStory(ctx context.Context, s *story.Story) error {
	if m.CreateStoryErr != nil {
		return m.CreateStoryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextStoryID++
	s.ID = m.nextStoryID
	m.stories[s.ID] = s
	m.storyOrder[s.UserID] = append(m.storyOrder[s.UserID], s.ID)
	return nil
}

func (m *MockStore) GetStory(ctx context.Context, id int64) (*story.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stories[id], nil
}

func (m *MockStore) GetUserStories(ctx context.Context, userID string) ([]*story.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*story.Story, 0, len(m.storyOrder[userID]))
	for _, id := range m.storyOrder[userID] {
		out = append(out, m.stories[id])
	}
	return out, nil
}

func (m *MockStore) GetProgress(ctx context.Context, userID string) (*game.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress[userID], nil
}

func (m *MockStore) SaveProgress(ctx context.Context, p *game.UserProgress) error {
	if m.SaveProgressErr != nil {
		return m.SaveProgressErr
	}
	if p == nil {
		return errors.New("progress cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[p.UserID] = p
	return nil
}

func (m *MockStore) CreateMission(ctx context.Context, mi *game.Mission) error {
	if m.CreateMissionErr != nil {
		return m.CreateMissionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMissionID++
	mi.ID = m.nextMissionID
	m.missions[mi.ID] = mi
	m.missionIDs[mi.UserID] = append(m.missionIDs[mi.UserID], mi.ID)
	return nil
}

func (m *MockStore) GetMission(ctx context.Context, id int64) (*game.Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.missions[id], nil
}

func (m *MockStore) SaveMission(ctx context.Context, mi *game.Mission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missions[mi.ID] = mi
	return nil
}

func (m *MockStore) GetActiveMissions(ctx context.Context, userID string) ([]*game.Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*game.Mission, 0)
	for _, id := range m.missionIDs[userID] {
		if mi := m.missions[id]; mi != nil && mi.Status == game.MissionStatusActive {
			out = append(out, mi)
		}
	}
	return out, nil
}

func (m *MockStore) GetCharacter(ctx context.Context, userID, characterID string) (*game.CharacterEvolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.characters[userID+":"+characterID], nil
}

func (m *MockStore) SaveCharacter(ctx context.Context, ce *game.CharacterEvolution) error {
	if m.SaveCharacterErr != nil {
		return m.SaveCharacterErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[ce.UserID+":"+ce.CharacterID] = ce
	return nil
}

func (m *MockStore) ListCharacters(ctx context.Context, userID string) ([]*game.CharacterEvolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*game.CharacterEvolution, 0)
	for key, ce := range m.characters {
		if len(key) > len(userID) && key[:len(userID)+1] == userID+":" {
			out = append(out, ce)
		}
	}
	return out, nil
}
