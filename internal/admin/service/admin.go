package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	bookingsrepo "skillex/internal/bookings/repository"
	listingserrors "skillex/internal/listings/errors"
	listingsrepo "skillex/internal/listings/repository"
	reviewsrepo "skillex/internal/reviews/repository"
	usersrepo "skillex/internal/users/repository"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/model"
)

// activityWindow is the lookback for the "recent activity" stats block.
const activityWindow = 30 * 24 * time.Hour

type PlatformStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalListings int64 `json:"totalListings"`
	TotalBookings int64 `json:"totalBookings"`
	TotalReviews  int64 `json:"totalReviews"`

	ActiveListings    int64 `json:"activeListings"`
	PendingBookings   int64 `json:"pendingBookings"`
	CompletedBookings int64 `json:"completedBookings"`

	NewUsers30d    int64 `json:"newUsers30d"`
	NewListings30d int64 `json:"newListings30d"`
	NewBookings30d int64 `json:"newBookings30d"`
}

type AdminService interface {
	Stats(ctx context.Context) (*PlatformStats, error)
	ListUsers(ctx context.Context, limit int, skip int64) ([]*model.User, int64, error)
	ListListings(ctx context.Context, filter *model.ListingFilter, limit int, skip int64) ([]*model.Listing, int64, error)
	// FlagListing toggles a listing between active and inactive.
	FlagListing(ctx context.Context, id string) (*model.Listing, error)
}

type adminService struct {
	users    usersrepo.UserRepository
	listings listingsrepo.ListingRepository
	bookings bookingsrepo.BookingRepository
	reviews  reviewsrepo.ReviewRepository
	cfg      *config.Config
}

func NewAdminService(
	users usersrepo.UserRepository,
	listings listingsrepo.ListingRepository,
	bookings bookingsrepo.BookingRepository,
	reviews reviewsrepo.ReviewRepository,
	cfg *config.Config,
) AdminService {
	return &adminService{
		users:    users,
		listings: listings,
		bookings: bookings,
		reviews:  reviews,
		cfg:      cfg,
	}
}

func (s *adminService) Stats(ctx context.Context) (*PlatformStats, error) {
	since := time.Now().UTC().Add(-activityWindow)
	stats := &PlatformStats{}

	counts := []struct {
		dest *int64
		load func(context.Context) (int64, error)
	}{
		{&stats.TotalUsers, s.users.Count},
		{&stats.TotalListings, s.listings.Count},
		{&stats.TotalBookings, s.bookings.Count},
		{&stats.TotalReviews, s.reviews.Count},
		{&stats.ActiveListings, func(ctx context.Context) (int64, error) {
			return s.listings.CountByStatus(ctx, model.ListingActive)
		}},
		{&stats.PendingBookings, func(ctx context.Context) (int64, error) {
			return s.bookings.CountByStatus(ctx, model.BookingPending)
		}},
		{&stats.CompletedBookings, func(ctx context.Context) (int64, error) {
			return s.bookings.CountByStatus(ctx, model.BookingCompleted)
		}},
		{&stats.NewUsers30d, func(ctx context.Context) (int64, error) {
			return s.users.CountCreatedSince(ctx, since)
		}},
		{&stats.NewListings30d, func(ctx context.Context) (int64, error) {
			return s.listings.CountCreatedSince(ctx, since)
		}},
		{&stats.NewBookings30d, func(ctx context.Context) (int64, error) {
			return s.bookings.CountCreatedSince(ctx, since)
		}},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(counts))
	for i, c := range counts {
		i, c := i, c
		wg.Add(1)
		go func() {
			defer wg.Done()
			*c.dest, errs[i] = c.load(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to load platform stats", "error", err)
			return nil, apperrors.Internal("Failed to load platform stats", err)
		}
	}

	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, limit int, skip int64) ([]*model.User, int64, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count users", err)
	}

	users, err := s.users.FindAll(ctx, limit, skip)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve users", err)
	}

	return users, total, nil
}

func (s *adminService) ListListings(ctx context.Context, filter *model.ListingFilter, limit int, skip int64) ([]*model.Listing, int64, error) {
	total, err := s.listings.CountSearch(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count listings", err)
	}

	listings, err := s.listings.Search(ctx, filter, limit, skip)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve listings", err)
	}

	return listings, total, nil
}

func (s *adminService) FlagListing(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, listingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Listing", id)
		case errors.Is(err, listingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid listing ID format")
		default:
			return nil, apperrors.Internal("Failed to load listing", err)
		}
	}

	next := model.ListingInactive
	if listing.Status == model.ListingInactive {
		next = model.ListingActive
	}

	if err := s.listings.Update(ctx, id, bson.M{"status": next}); err != nil {
		return nil, apperrors.Internal("Failed to flag listing", err)
	}

	listing.Status = next
	s.cfg.Log.Info("Listing flagged", "id", id, "status", next)
	return listing, nil
}
