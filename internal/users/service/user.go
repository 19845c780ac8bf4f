package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	userserrors "skillex/internal/users/errors"
	"skillex/internal/users/repository"
	"skillex/internal/users/validator"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/media"
	"skillex/pkg/model"
	"skillex/pkg/sanitizer"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, identity model.Identity, updates *model.UserUpdate) (*model.User, error)
	UpdateAvatar(ctx context.Context, identity model.Identity, imageData []byte) (string, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	media     media.Store
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	mediaStore media.Store,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		media:     mediaStore,
		cfg:       cfg,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateUserError(err, id)
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, identity model.Identity, updates *model.UserUpdate) (*model.User, error) {
	s.sanitizeUpdate(updates)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Profile update validation failed", "user_id", identity.UserID, "error", err)
		return nil, apperrors.Validation("Invalid profile input", map[string]any{"error": err.Error()})
	}

	fields := bson.M{}
	if updates.Name != "" {
		fields["name"] = updates.Name
	}
	if updates.Bio != nil {
		fields["bio"] = *updates.Bio
	}
	if updates.Location != nil {
		fields["location"] = *updates.Location
	}
	if updates.Skills != nil {
		fields["skills"] = updates.Skills
	}
	if updates.Interests != nil {
		fields["interests"] = updates.Interests
	}
	if len(fields) == 0 {
		return nil, apperrors.InvalidInput("No profile fields to update")
	}

	if err := s.repo.Update(ctx, identity.UserID, fields); err != nil {
		return nil, translateUserError(err, identity.UserID)
	}

	user, err := s.repo.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, translateUserError(err, identity.UserID)
	}

	s.cfg.Log.Info("Profile updated", "user_id", identity.UserID)
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, identity model.Identity, imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", apperrors.InvalidInput("Avatar image is required")
	}

	existing, err := s.repo.FindByID(ctx, identity.UserID)
	if err != nil {
		return "", translateUserError(err, identity.UserID)
	}

	url, err := s.media.Upload(ctx, imageData, s.cfg.CloudinaryFolder+"/avatars")
	if err != nil {
		s.cfg.Log.Error("Avatar upload failed", "user_id", identity.UserID, "error", err)
		return "", apperrors.Internal("Failed to upload avatar", err)
	}

	if err := s.repo.Update(ctx, identity.UserID, bson.M{"avatar": url}); err != nil {
		return "", translateUserError(err, identity.UserID)
	}

	// Replaced avatar cleanup is best-effort.
	if existing.Avatar != "" {
		s.media.Delete(ctx, existing.Avatar)
	}

	s.cfg.Log.Info("Avatar updated", "user_id", identity.UserID)
	return url, nil
}

func (s *userService) sanitizeUpdate(updates *model.UserUpdate) {
	updates.Name = sanitizer.TrimAndNormalize(updates.Name)
	if updates.Bio != nil {
		bio := sanitizer.TrimAndNormalize(*updates.Bio)
		updates.Bio = &bio
	}
	if updates.Location != nil {
		updates.Location.City = sanitizer.TrimAndNormalize(updates.Location.City)
		updates.Location.Country = sanitizer.TrimAndNormalize(updates.Location.Country)
	}
	updates.Skills = sanitizer.NormalizeTags(updates.Skills)
	updates.Interests = sanitizer.NormalizeTags(updates.Interests)
}

func translateUserError(err error, id string) error {
	switch {
	case errors.Is(err, userserrors.ErrNotFound):
		return apperrors.NotFoundWithID("User", id)
	case errors.Is(err, userserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid user ID format")
	default:
		return apperrors.Internal("Failed to access user", err)
	}
}
