package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// Key layout:
//   user:{id}                         user record
//   progress:{userID}                 user progress singleton
//   story:{id}                        story node
//   user:{userID}:stories             list of story ids, insertion order
//   mission:{id}                      mission record
//   user:{userID}:missions            list of mission ids, insertion order
//   character:{userID}:{characterID}  character evolution record
//   user:{userID}:characters          set of character ids
//   seq:story, seq:mission            id sequences (INCR)

// RedisStore implements Storage on Redis.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-backed entity store.
func NewRedisStore(redisURL string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStore{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// nextID returns the next value of a named sequence.
func (r *RedisStore) nextID(ctx context.Context, sequence string) (int64, error) {
	id, err := r.client.Incr(ctx, "seq:"+sequence).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", sequence, err)
	}
	return id, nil
}

// setJSON marshals and stores a record under key.
func (r *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// getJSON loads and unmarshals a record. Reports found=false on miss.
func (r *RedisStore) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// User operations

func (r *RedisStore) GetUser(ctx context.Context, id string) (*game.User, error) {
	var u game.User
	found, err := r.getJSON(ctx, "user:"+id, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (r *RedisStore) SaveUser(ctx context.Context, u *game.User) error {
	return r.setJSON(ctx, "user:"+u.ID, u)
}

// Story operations

func (r *RedisStore) CreateStory(ctx context.Context, s *story.Story) error {
	id, err := r.nextID(ctx, "story")
	if err != nil {
		return err
	}
	s.ID = id
	s.CreatedAt = time.Now().UTC()

	if err := r.setJSON(ctx, storyKey(id), s); err != nil {
		return err
	}
	if err := r.client.RPush(ctx, "user:"+s.UserID+":stories", id).Err(); err != nil {
		return fmt.Errorf("failed to index story %d: %w", id, err)
	}
	return nil
}

func (r *RedisStore) GetStory(ctx context.Context, id int64) (*story.Story, error) {
	var s story.Story
	found, err := r.getJSON(ctx, storyKey(id), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) GetUserStories(ctx context.Context, userID string) ([]*story.Story, error) {
	ids, err := r.client.LRange(ctx, "user:"+userID+":stories", 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stories for user %s: %w", userID, err)
	}

	stories := make([]*story.Story, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			r.logger.Warn("Skipping malformed story id", "user_id", userID, "id", idStr)
			continue
		}
		s, err := r.GetStory(ctx, id)
		if err != nil {
			return nil, err
		}
		if s != nil {
			stories = append(stories, s)
		}
	}
	return stories, nil
}

// Progress operations

func (r *RedisStore) GetProgress(ctx context.Context, userID string) (*game.UserProgress, error) {
	var p game.UserProgress
	found, err := r.getJSON(ctx, "progress:"+userID, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *RedisStore) SaveProgress(ctx context.Context, p *game.UserProgress) error {
	p.UpdatedAt = time.Now().UTC()
	return r.setJSON(ctx, "progress:"+p.UserID, p)
}

// Mission operations

func (r *RedisStore) CreateMission(ctx context.Context, m *game.Mission) error {
	id, err := r.nextID(ctx, "mission")
	if err != nil {
		return err
	}
	m.ID = id

	if err := r.setJSON(ctx, missionKey(id), m); err != nil {
		return err
	}
	if err := r.client.RPush(ctx, "user:"+m.UserID+":missions", id).Err(); err != nil {
		return fmt.Errorf("failed to index mission %d: %w", id, err)
	}
	return nil
}

func (r *RedisStore) GetMission(ctx context.Context, id int64) (*game.Mission, error) {
	var m game.Mission
	found, err := r.getJSON(ctx, missionKey(id), &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

func (r *RedisStore) SaveMission(ctx context.Context, m *game.Mission) error {
	return r.setJSON(ctx, missionKey(m.ID), m)
}

func (r *RedisStore) GetActiveMissions(ctx context.Context, userID string) ([]*game.Mission, error) {
	ids, err := r.client.LRange(ctx, "user:"+userID+":missions", 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list missions for user %s: %w", userID, err)
	}

	missions := make([]*game.Mission, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			r.logger.Warn("Skipping malformed mission id", "user_id", userID, "id", idStr)
			continue
		}
		m, err := r.GetMission(ctx, id)
		if err != nil {
			return nil, err
		}
		if m != nil && m.Status == game.MissionStatusActive {
			missions = append(missions, m)
		}
	}
	return missions, nil
}

// Character evolution operations

func (r *RedisStore) GetCharacter(ctx context.Context, userID, characterID string) (*game.CharacterEvolution, error) {
	var ce game.CharacterEvolution
	found, err := r.getJSON(ctx, characterKey(userID, characterID), &ce)
	if err != nil || !found {
		return nil, err
	}
	return &ce, nil
}

func (r *RedisStore) SaveCharacter(ctx context.Context, ce *game.CharacterEvolution) error {
	if err := r.setJSON(ctx, characterKey(ce.UserID, ce.CharacterID), ce); err != nil {
		return err
	}
	if err := r.client.SAdd(ctx, "user:"+ce.UserID+":characters", ce.CharacterID).Err(); err != nil {
		return fmt.Errorf("failed to index character %s: %w", ce.CharacterID, err)
	}
	return nil
}

func (r *RedisStore) ListCharacters(ctx context.Context, userID string) ([]*game.CharacterEvolution, error) {
	ids, err := r.client.SMembers(ctx, "user:"+userID+":characters").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list characters for user %s: %w", userID, err)
	}

	characters := make([]*game.CharacterEvolution, 0, len(ids))
	for _, characterID := range ids {
		ce, err := r.GetCharacter(ctx, userID, characterID)
		if err != nil {
			return nil, err
		}
		if ce != nil {
			characters = append(characters, ce)
		}
	}
	return characters, nil
}

func storyKey(id int64) string   { return "story:" + strconv.FormatInt(id, 10) }
func missionKey(id int64) string { return "mission:" + strconv.FormatInt(id, 10) }

func characterKey(userID, characterID string) string {
	return "character:" + userID + ":" + characterID
}
