package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/usermgmt/apiserver/internal/logger"
	"github.com/usermgmt/apiserver/types"
)

const snapshotContentType = "application/json"

// SnapshotService exports the user table to object storage.
type SnapshotService struct {
	repo    UserRepository
	objects ObjectStore
}

func NewSnapshotService(repo UserRepository, objects ObjectStore) *SnapshotService {
	return &SnapshotService{repo: repo, objects: objects}
}

// Export writes every user, soft-deleted ones included, as a JSON array
// under key and returns how many users were written.
func (s *SnapshotService) Export(ctx context.Context, key string) (int, error) {
	if key == "" {
		return 0, errors.New("snapshot key is required")
	}

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	data, err := json.Marshal(users)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.objects.EnsureBucket(ctx); err != nil {
		return 0, fmt.Errorf("ensure bucket: %w", err)
	}
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), snapshotContentType); err != nil {
		return 0, fmt.Errorf("upload snapshot %s: %w", key, err)
	}

	logger.FromContext(ctx).Info().Str("key", key).Int("users", len(users)).Msg("snapshot exported")
	return len(users), nil
}

// Load reads a snapshot previously written by Export. Records come back in
// full, soft-delete flag included.
func (s *SnapshotService) Load(ctx context.Context, key string) ([]types.User, error) {
	body, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download snapshot %s: %w", key, err)
	}
	defer body.Close()

	var users []types.User
	if err := json.NewDecoder(body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return users, nil
}

func (s *SnapshotService) Delete(ctx context.Context, key string) error {
	if err := s.objects.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}
