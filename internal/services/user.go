package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/usermgmt/apiserver/internal/logger"
	"github.com/usermgmt/apiserver/internal/store"
	"github.com/usermgmt/apiserver/internal/validators"
	"github.com/usermgmt/apiserver/types"
)

// UserService encapsulates user use-cases.
type UserService struct {
	repo      UserRepository
	validator *validators.UserValidator
	publisher EventPublisher
	channel   string
}

// UserServiceOption configures optional collaborators of a UserService.
type UserServiceOption func(*UserService)

// WithEventPublisher publishes a UserEvent on channel after every change.
func WithEventPublisher(publisher EventPublisher, channel string) UserServiceOption {
	return func(s *UserService) {
		s.publisher = publisher
		s.channel = channel
	}
}

func NewUserService(repo UserRepository, opts ...UserServiceOption) *UserService {
	s := &UserService{
		repo:      repo,
		validator: validators.NewUserValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every user, soft-deleted ones included.
func (s *UserService) ListAll(ctx context.Context) ([]types.User, error) {
	return s.repo.FindAll(ctx)
}

func (s *UserService) ListByDeleted(ctx context.Context, deleted bool) ([]types.User, error) {
	return s.repo.FindByIsDeleted(ctx, deleted)
}

func (s *UserService) FindByUsername(ctx context.Context, username string) ([]types.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Search lists users matching filter. An empty filter behaves like ListAll.
func (s *UserService) Search(ctx context.Context, filter types.UserFilter) ([]types.User, error) {
	switch {
	case filter.Username != nil:
		users, err := s.repo.FindByUsername(ctx, *filter.Username)
		if err != nil || filter.Deleted == nil {
			return users, err
		}
		matched := make([]types.User, 0, len(users))
		for _, user := range users {
			if user.IsDeleted == *filter.Deleted {
				matched = append(matched, user)
			}
		}
		return matched, nil
	case filter.Deleted != nil:
		return s.repo.FindByIsDeleted(ctx, *filter.Deleted)
	default:
		return s.repo.FindAll(ctx)
	}
}

// GetByID returns the user with id. A missing user is reported through the
// boolean, not as an error.
func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, bool, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, false, nil
		}
		return types.User{}, false, err
	}
	return user, true, nil
}

// Create validates in and stores a new active user. The username must not be
// used by any existing row, deleted or not.
func (s *UserService) Create(ctx context.Context, in types.UserInput) (types.User, error) {
	if err := s.validator.ValidateCreate(in); err != nil {
		return types.User{}, err
	}

	username, _ := in.Username.Value()
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return types.User{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return types.User{}, ErrUsernameTaken
	}

	created, err := s.repo.Save(ctx, in.Apply(types.User{}))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return types.User{}, ErrUsernameTaken
		}
		return types.User{}, fmt.Errorf("save user: %w", err)
	}

	s.publish(ctx, types.UserCreated, created)
	return created, nil
}

// Update overwrites only the fields supplied in in.
func (s *UserService) Update(ctx context.Context, id int64, in types.UserInput) (types.User, error) {
	if err := s.validator.ValidateUpdate(in); err != nil {
		return types.User{}, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	updated, err := s.repo.Save(ctx, in.Apply(user))
	if err != nil {
		return types.User{}, s.saveError(err)
	}

	s.publish(ctx, types.UserUpdated, updated)
	return updated, nil
}

// SoftDelete flags the user as deleted. The row is kept.
func (s *UserService) SoftDelete(ctx context.Context, id int64) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	user.IsDeleted = true
	deleted, err := s.repo.Save(ctx, user)
	if err != nil {
		return s.saveError(err)
	}

	s.publish(ctx, types.UserDeleted, deleted)
	return nil
}

func (s *UserService) find(ctx context.Context, id int64) (types.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}

func (s *UserService) saveError(err error) error {
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("save user: %w", err)
	}
}

// publish never fails the caller: the store is authoritative and a lost event
// is only logged.
func (s *UserService) publish(ctx context.Context, eventType types.UserEventType, user types.User) {
	if s.publisher == nil {
		return
	}
	log := logger.FromContext(ctx)

	data, err := json.Marshal(types.UserEvent{
		Type:       eventType,
		User:       user,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("event", string(eventType)).Msg("failed to encode user event")
		return
	}

	attrs := map[string]string{
		types.EventTypeAttribute:   string(eventType),
		types.EventUserIDAttribute: strconv.FormatInt(user.ID, 10),
	}
	id, err := s.publisher.Publish(ctx, s.channel, data, attrs)
	if err != nil {
		log.Error().Err(err).
			Str("event", string(eventType)).
			Int64("user_id", user.ID).
			Msg("failed to publish user event")
		return
	}
	log.Debug().Str("event", string(eventType)).Str("message_id", id).Msg("user event published")
}
