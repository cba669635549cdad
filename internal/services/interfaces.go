package services

//go:generate mockgen -source=interfaces.go -destination=../mock/services_mock.go -package=mock

import (
	"context"
	"io"

	"github.com/usermgmt/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindAll(ctx context.Context) ([]types.User, error)
	FindByID(ctx context.Context, id int64) (types.User, error)
	FindByUsername(ctx context.Context, username string) ([]types.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByIsDeleted(ctx context.Context, deleted bool) ([]types.User, error)
	Save(ctx context.Context, user types.User) (types.User, error)
}

// EventPublisher sends user lifecycle events to a broker channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// ObjectStore holds user snapshots.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
