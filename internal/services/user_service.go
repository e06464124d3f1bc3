package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/repositories"

	"github.com/google/uuid"
)

const avatarBucket = "user-avatars"

type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User, actorRole string) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	storage  MinioService
}

func NewUserService(userRepo repositories.UserRepository, storage MinioService) UserService {
	return &userService{userRepo: userRepo, storage: storage}
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateUser changes profile fields. Role changes are restricted to managers.
func (s *userService) UpdateUser(ctx context.Context, user *models.User, actorRole string) (*models.User, error) {
	if user.Name == "" {
		return nil, common.NewValidationError("name", "name is required")
	}
	if !models.ValidRole(user.Role) {
		return nil, common.NewValidationError("role", "unknown role "+user.Role)
	}

	existing, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing.Role != user.Role && !models.RoleAtLeast(actorRole, models.RoleManager) {
		return nil, common.NewAuthorizationError("change a user's role")
	}

	// Email and password hash are immutable through this path.
	user.Email = existing.Email
	user.PasswordHash = existing.PasswordHash
	if user.AvatarURL == nil {
		user.AvatarURL = existing.AvatarURL
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, user.ID)
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}

// UploadAvatar stores the image in object storage and records a presigned URL
// on the profile.
func (s *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, common.NewConflictError("avatar storage is not configured")
	}

	if err := s.storage.EnsureBucketExists(ctx, avatarBucket); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s/avatar%s", userID.String(), path.Ext(filename))
	if err := s.storage.UploadAvatar(ctx, avatarBucket, objectName, reader, size, contentType); err != nil {
		return nil, err
	}

	url, err := s.storage.GetPresignedURL(avatarBucket, objectName, 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	user.AvatarURL = &url
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("avatar updated for user %s", userID)
	return user, nil
}
