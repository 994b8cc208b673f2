package services

import (
	"context"

	"github.com/sbilibin2017/gw-messenger/internal/logger"
	"github.com/sbilibin2017/gw-messenger/internal/models"
)

// DirectoryService gives read access to user profiles.
type DirectoryService struct {
	reader UserReader
	cache  ProfileCache
}

// NewDirectoryService creates a new DirectoryService. cache may be nil.
func NewDirectoryService(reader UserReader, cache ProfileCache) *DirectoryService {
	return &DirectoryService{
		reader: reader,
		cache:  cache,
	}
}

// GetProfile returns the public profile of username.
func (s *DirectoryService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	log := logger.FromContext(ctx)

	if s.cache != nil {
		profile, err := s.cache.GetProfile(ctx, username)
		if err != nil {
			log.Warnw("failed to read cached profile", "username", username, "err", err)
		}
		if profile != nil {
			return profile, nil
		}
	}

	user, err := s.reader.GetByUsername(ctx, username)
	if err != nil {
		log.Errorw("failed to get user", "username", username, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	profile := user.Profile()
	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, profile); err != nil {
			log.Warnw("failed to cache profile", "username", username, "err", err)
		}
	}

	return profile, nil
}

// ListAll returns basic info on all users ordered by username. No users is an empty list.
func (s *DirectoryService) ListAll(ctx context.Context) ([]models.UserBasic, error) {
	users, err := s.reader.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to list users", "err", err)
		return nil, err
	}
	if users == nil {
		users = []models.UserBasic{}
	}
	return users, nil
}
