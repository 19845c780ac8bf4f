package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	listingserrors "skillex/internal/listings/errors"
	"skillex/internal/listings/repository"
	"skillex/internal/listings/validator"
	usersrepo "skillex/internal/users/repository"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/media"
	"skillex/pkg/model"
	"skillex/pkg/sanitizer"
)

const maxListingImages = 3

type ListingService interface {
	Create(ctx context.Context, identity model.Identity, listing *model.Listing) error
	GetByID(ctx context.Context, id string, viewerID string) (*model.Listing, error)
	Search(ctx context.Context, filter *model.ListingFilter, limit int, skip int64) ([]*model.Listing, int64, error)
	Update(ctx context.Context, identity model.Identity, id string, updates *model.ListingUpdate) (*model.Listing, error)
	Delete(ctx context.Context, identity model.Identity, id string) error
	AddImage(ctx context.Context, identity model.Identity, id string, imageData []byte) (string, error)
	Favorite(ctx context.Context, identity model.Identity, listingID string) error
	Unfavorite(ctx context.Context, identity model.Identity, listingID string) error
	ListFavorites(ctx context.Context, identity model.Identity) ([]*model.Listing, error)
}

type listingService struct {
	repo      repository.ListingRepository
	favorites repository.FavoriteRepository
	users     usersrepo.UserRepository
	validator *validator.ListingValidator
	media     media.Store
	cfg       *config.Config
}

func NewListingService(
	repo repository.ListingRepository,
	favorites repository.FavoriteRepository,
	users usersrepo.UserRepository,
	validator *validator.ListingValidator,
	mediaStore media.Store,
	cfg *config.Config,
) ListingService {
	return &listingService{
		repo:      repo,
		favorites: favorites,
		users:     users,
		validator: validator,
		media:     mediaStore,
		cfg:       cfg,
	}
}

func (s *listingService) Create(ctx context.Context, identity model.Identity, listing *model.Listing) error {
	if identity.Role != model.RoleTeacher && !identity.IsAdmin() {
		return apperrors.Forbidden("Only teachers can create listings")
	}

	listing.TeacherID = identity.UserID
	s.applyDefaults(listing)
	s.sanitize(listing)

	if err := s.validator.Validate(listing); err != nil {
		s.cfg.Log.Warn("Listing validation failed", "teacher_id", identity.UserID, "error", err)
		return apperrors.Validation("Listing validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create listing", "teacher_id", identity.UserID, "error", err)
		return apperrors.Internal("Failed to create listing", err)
	}

	s.cfg.Log.Info("Listing created", "id", listing.ID, "teacher_id", listing.TeacherID, "category", listing.Category)
	return nil
}

// GetByID returns one listing with its teacher embedded. A view by anyone
// other than the owner bumps the denormalized views counter; that write is
// best-effort.
func (s *listingService) GetByID(ctx context.Context, id string, viewerID string) (*model.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateListingError(err, id)
	}

	if viewerID != listing.TeacherID {
		if err := s.repo.IncrementViews(ctx, id); err != nil {
			s.cfg.Log.Warn("Failed to increment listing views", "id", id, "error", err)
		} else {
			listing.Views++
		}
	}

	if teacher, err := s.users.FindPublicByID(ctx, listing.TeacherID); err == nil {
		listing.Teacher = teacher
	}

	return listing, nil
}

func (s *listingService) Search(ctx context.Context, filter *model.ListingFilter, limit int, skip int64) ([]*model.Listing, int64, error) {
	var count int64
	var listings []*model.Listing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountSearch(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count listings", "error", errCount)
			errCount = apperrors.Internal("Failed to count listings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		listings, errFind = s.repo.Search(ctx, filter, limit, skip)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search listings", "error", errFind)
			errFind = apperrors.Internal("Failed to search listings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	if err := s.embedTeachers(ctx, listings); err != nil {
		s.cfg.Log.Warn("Failed to embed teachers on listings", "error", err)
	}

	return listings, count, nil
}

func (s *listingService) Update(ctx context.Context, identity model.Identity, id string, updates *model.ListingUpdate) (*model.Listing, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateListingError(err, id)
	}
	if existing.TeacherID != identity.UserID && !identity.IsAdmin() {
		return nil, apperrors.Forbidden("You can only modify your own listings")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Listing update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid listing input", map[string]any{"error": err.Error()})
	}

	fields := bson.M{}
	if updates.Title != "" {
		fields["title"] = updates.Title
	}
	if updates.Description != "" {
		fields["description"] = updates.Description
	}
	if updates.Category != "" {
		fields["category"] = updates.Category
	}
	if updates.Price != nil {
		fields["price"] = *updates.Price
	}
	if updates.Duration != nil {
		fields["duration"] = *updates.Duration
	}
	if updates.Location != nil {
		fields["location"] = *updates.Location
	}
	if updates.Availability != nil {
		fields["availability"] = *updates.Availability
	}
	if updates.Status != "" {
		fields["status"] = updates.Status
	}
	if len(fields) == 0 {
		return nil, apperrors.InvalidInput("No listing fields to update")
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, translateListingError(err, id)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateListingError(err, id)
	}

	s.cfg.Log.Info("Listing updated", "id", id)
	return updated, nil
}

func (s *listingService) Delete(ctx context.Context, identity model.Identity, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateListingError(err, id)
	}
	if existing.TeacherID != identity.UserID && !identity.IsAdmin() {
		return apperrors.Forbidden("You can only delete your own listings")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateListingError(err, id)
	}

	if err := s.favorites.DeleteByListing(ctx, id); err != nil {
		s.cfg.Log.Warn("Failed to clear favorites for deleted listing", "id", id, "error", err)
	}
	for _, img := range existing.Images {
		s.media.Delete(ctx, img)
	}

	s.cfg.Log.Info("Listing deleted", "id", id, "teacher_id", existing.TeacherID)
	return nil
}

func (s *listingService) AddImage(ctx context.Context, identity model.Identity, id string, imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", apperrors.InvalidInput("Image is required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", translateListingError(err, id)
	}
	if existing.TeacherID != identity.UserID && !identity.IsAdmin() {
		return "", apperrors.Forbidden("You can only modify your own listings")
	}
	if len(existing.Images) >= maxListingImages {
		return "", apperrors.Conflict("Listing already has the maximum of 3 images")
	}

	url, err := s.media.Upload(ctx, imageData, s.cfg.CloudinaryFolder+"/listings")
	if err != nil {
		s.cfg.Log.Error("Listing image upload failed", "id", id, "error", err)
		return "", apperrors.Internal("Failed to upload image", err)
	}

	added, err := s.repo.AddImage(ctx, id, url, maxListingImages)
	if err != nil {
		return "", translateListingError(err, id)
	}
	if !added {
		// Lost a race for the last slot; drop the uploaded copy.
		s.media.Delete(ctx, url)
		return "", apperrors.Conflict("Listing already has the maximum of 3 images")
	}

	s.cfg.Log.Info("Listing image added", "id", id)
	return url, nil
}

func (s *listingService) Favorite(ctx context.Context, identity model.Identity, listingID string) error {
	if _, err := s.repo.FindByID(ctx, listingID); err != nil {
		return translateListingError(err, listingID)
	}

	favorite := &model.Favorite{UserID: identity.UserID, ListingID: listingID}
	if err := s.favorites.Create(ctx, favorite); err != nil {
		if errors.Is(err, listingserrors.ErrDuplicateFavorite) {
			return apperrors.Conflict("Listing is already in favorites")
		}
		return apperrors.Internal("Failed to add favorite", err)
	}

	if err := s.repo.AdjustFavoritesCount(ctx, listingID, 1); err != nil {
		s.cfg.Log.Warn("Failed to bump favorites count", "listing_id", listingID, "error", err)
	}

	s.cfg.Log.Info("Favorite added", "user_id", identity.UserID, "listing_id", listingID)
	return nil
}

func (s *listingService) Unfavorite(ctx context.Context, identity model.Identity, listingID string) error {
	if err := s.favorites.Delete(ctx, identity.UserID, listingID); err != nil {
		if errors.Is(err, listingserrors.ErrFavoriteNotFound) {
			return apperrors.NotFound("Favorite")
		}
		return apperrors.Internal("Failed to remove favorite", err)
	}

	if err := s.repo.AdjustFavoritesCount(ctx, listingID, -1); err != nil {
		s.cfg.Log.Warn("Failed to decrement favorites count", "listing_id", listingID, "error", err)
	}

	s.cfg.Log.Info("Favorite removed", "user_id", identity.UserID, "listing_id", listingID)
	return nil
}

func (s *listingService) ListFavorites(ctx context.Context, identity model.Identity) ([]*model.Listing, error) {
	ids, err := s.favorites.FindListingIDsByUser(ctx, identity.UserID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load favorites", err)
	}
	if len(ids) == 0 {
		return []*model.Listing{}, nil
	}

	listings, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("Failed to load favorite listings", err)
	}

	// Preserve bookmark recency order.
	byID := make(map[string]*model.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	ordered := make([]*model.Listing, 0, len(listings))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}

	if err := s.embedTeachers(ctx, ordered); err != nil {
		s.cfg.Log.Warn("Failed to embed teachers on favorites", "error", err)
	}
	return ordered, nil
}

// --- Helpers ---

func (s *listingService) applyDefaults(listing *model.Listing) {
	if listing.Status == "" {
		listing.Status = model.ListingActive
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}
}

func (s *listingService) sanitize(listing *model.Listing) {
	listing.Title = sanitizer.TrimAndNormalize(listing.Title)
	listing.Description = sanitizer.TrimAndNormalize(listing.Description)
	listing.Location.Address = sanitizer.TrimAndNormalize(listing.Location.Address)
	listing.Location.City = sanitizer.TrimAndNormalize(listing.Location.City)
}

func (s *listingService) sanitizeUpdate(updates *model.ListingUpdate) {
	updates.Title = sanitizer.TrimAndNormalize(updates.Title)
	updates.Description = sanitizer.TrimAndNormalize(updates.Description)
	if updates.Location != nil {
		updates.Location.Address = sanitizer.TrimAndNormalize(updates.Location.Address)
		updates.Location.City = sanitizer.TrimAndNormalize(updates.Location.City)
	}
}

func (s *listingService) embedTeachers(ctx context.Context, listings []*model.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]string, 0, len(listings))
	seen := make(map[string]bool, len(listings))
	for _, l := range listings {
		if !seen[l.TeacherID] {
			seen[l.TeacherID] = true
			ids = append(ids, l.TeacherID)
		}
	}

	teachers, err := s.users.FindPublicByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, l := range listings {
		l.Teacher = teachers[l.TeacherID]
	}
	return nil
}

func translateListingError(err error, id string) error {
	switch {
	case errors.Is(err, listingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Listing", id)
	case errors.Is(err, listingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid listing ID format")
	default:
		return apperrors.Internal("Failed to access listing", err)
	}
}
