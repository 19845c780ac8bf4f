package service

import (
	"context"
	"errors"
	"math"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	bookingserrors "skillex/internal/bookings/errors"
	bookingsrepo "skillex/internal/bookings/repository"
	reviewserrors "skillex/internal/reviews/errors"
	"skillex/internal/reviews/repository"
	"skillex/internal/reviews/validator"
	usersrepo "skillex/internal/users/repository"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/model"
	"skillex/pkg/notify"
	"skillex/pkg/sanitizer"
)

type ReviewService interface {
	Create(ctx context.Context, identity model.Identity, review *model.Review) error
	ListByReviewee(ctx context.Context, revieweeID string, limit int, skip int64) ([]*model.Review, int64, error)
	Update(ctx context.Context, identity model.Identity, id string, updates *model.ReviewUpdate) (*model.Review, error)
	Delete(ctx context.Context, identity model.Identity, id string) error
}

type reviewService struct {
	repo      repository.ReviewRepository
	bookings  bookingsrepo.BookingRepository
	users     usersrepo.UserRepository
	validator *validator.ReviewValidator
	notifier  notify.Notifier
	cfg       *config.Config
}

func NewReviewService(
	repo repository.ReviewRepository,
	bookings bookingsrepo.BookingRepository,
	users usersrepo.UserRepository,
	validator *validator.ReviewValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:      repo,
		bookings:  bookings,
		users:     users,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Create accepts a review only from the learner of a completed booking, at
// most once per booking. The reviewee is the booking's teacher; a request
// naming anyone else is rejected.
func (s *reviewService) Create(ctx context.Context, identity model.Identity, review *model.Review) error {
	if review.BookingID == "" {
		return apperrors.InvalidInput("Booking ID is required")
	}

	booking, err := s.bookings.FindByID(ctx, review.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return apperrors.NotFoundWithID("Booking", review.BookingID)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid booking ID format")
		default:
			return apperrors.Internal("Failed to load booking", err)
		}
	}

	if booking.LearnerID != identity.UserID {
		return apperrors.Forbidden("Only the learner of the booking can leave a review")
	}
	if booking.Status != model.BookingCompleted {
		return apperrors.InvalidState("Only completed bookings can be reviewed")
	}

	if review.RevieweeID != "" && review.RevieweeID != booking.TeacherID {
		return apperrors.Validation("Reviewee does not match the teacher in the booking", nil)
	}

	review.ReviewerID = identity.UserID
	review.RevieweeID = booking.TeacherID
	review.Comment = sanitizer.TrimAndNormalize(review.Comment)
	review.Response = ""

	if err := s.validator.Validate(review); err != nil {
		s.cfg.Log.Warn("Review validation failed", "booking_id", review.BookingID, "error", err)
		return apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, reviewserrors.ErrDuplicateBooking) {
			return apperrors.Conflict("This booking has already been reviewed")
		}
		s.cfg.Log.Error("Failed to create review", "booking_id", review.BookingID, "error", err)
		return apperrors.Internal("Failed to create review", err)
	}

	s.cfg.Log.Info("Review created",
		"id", review.ID,
		"booking_id", review.BookingID,
		"reviewee_id", review.RevieweeID,
		"rating", review.Rating,
	)

	s.recomputeRating(ctx, review.RevieweeID)
	s.notifyReviewee(ctx, review)
	return nil
}

func (s *reviewService) ListByReviewee(ctx context.Context, revieweeID string, limit int, skip int64) ([]*model.Review, int64, error) {
	if revieweeID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	var count int64
	var reviews []*model.Review
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByReviewee(ctx, revieweeID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reviews", "reviewee_id", revieweeID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reviews", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reviews, errFind = s.repo.FindByReviewee(ctx, revieweeID, limit, skip)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reviews", "reviewee_id", revieweeID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reviews", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.embedReviewers(ctx, reviews)
	return reviews, count, nil
}

// Update lets the reviewer change rating and comment and the reviewee attach
// a single response. Each side can only touch its own fields; admins can
// touch both.
func (s *reviewService) Update(ctx context.Context, identity model.Identity, id string, updates *model.ReviewUpdate) (*model.Review, error) {
	existing, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}

	updates.Comment = sanitizer.TrimAndNormalize(updates.Comment)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid review input", map[string]any{"error": err.Error()})
	}

	fields := bson.M{}
	ratingChanged := false

	if updates.Rating != nil || updates.Comment != "" {
		if existing.ReviewerID != identity.UserID && !identity.IsAdmin() {
			return nil, apperrors.Forbidden("Only the reviewer can edit rating and comment")
		}
		if updates.Rating != nil {
			fields["rating"] = *updates.Rating
			ratingChanged = true
		}
		if updates.Comment != "" {
			fields["comment"] = updates.Comment
		}
	}

	if updates.Response != nil {
		if existing.RevieweeID != identity.UserID && !identity.IsAdmin() {
			return nil, apperrors.Forbidden("Only the reviewee can respond to a review")
		}
		fields["response"] = sanitizer.TrimAndNormalize(*updates.Response)
	}

	if len(fields) == 0 {
		return nil, apperrors.InvalidInput("No review fields to update")
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, translateReviewError(err, id)
	}

	if ratingChanged {
		s.recomputeRating(ctx, existing.RevieweeID)
	}

	updated, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Review updated", "id", id, "rating_changed", ratingChanged)
	return updated, nil
}

func (s *reviewService) Delete(ctx context.Context, identity model.Identity, id string) error {
	existing, err := s.findReview(ctx, id)
	if err != nil {
		return err
	}
	if existing.ReviewerID != identity.UserID && !identity.IsAdmin() {
		return apperrors.Forbidden("You can only delete your own reviews")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateReviewError(err, id)
	}

	s.recomputeRating(ctx, existing.RevieweeID)
	s.cfg.Log.Info("Review deleted", "id", id, "reviewee_id", existing.RevieweeID)
	return nil
}

// recomputeRating rebuilds the reviewee's denormalized aggregate from the
// live review set. Concurrent recomputes converge because each one reads
// the full set. The average is rounded half-up to one decimal.
func (s *reviewService) recomputeRating(ctx context.Context, revieweeID string) {
	summary, err := s.repo.Aggregate(ctx, revieweeID)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate reviews", "reviewee_id", revieweeID, "error", err)
		return
	}

	summary.AverageRating = math.Round(summary.AverageRating*10) / 10

	if err := s.users.UpdateRating(ctx, revieweeID, summary); err != nil {
		s.cfg.Log.Error("Failed to store rating aggregate", "reviewee_id", revieweeID, "error", err)
		return
	}

	s.cfg.Log.Debug("Rating recomputed",
		"reviewee_id", revieweeID,
		"average", summary.AverageRating,
		"total", summary.TotalReviews,
	)
}

func (s *reviewService) findReview(ctx context.Context, id string) (*model.Review, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Review ID cannot be empty")
	}

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateReviewError(err, id)
	}
	return review, nil
}

func translateReviewError(err error, id string) error {
	switch {
	case errors.Is(err, reviewserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Review", id)
	case errors.Is(err, reviewserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid review ID format")
	default:
		return apperrors.Internal("Failed to access review", err)
	}
}

func (s *reviewService) embedReviewers(ctx context.Context, reviews []*model.Review) {
	if len(reviews) == 0 {
		return
	}

	ids := make([]string, 0, len(reviews))
	seen := make(map[string]bool, len(reviews))
	for _, rv := range reviews {
		if !seen[rv.ReviewerID] {
			seen[rv.ReviewerID] = true
			ids = append(ids, rv.ReviewerID)
		}
	}

	reviewers, err := s.users.FindPublicByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Warn("Failed to embed reviewers", "error", err)
		return
	}
	for _, rv := range reviews {
		rv.Reviewer = reviewers[rv.ReviewerID]
	}
}

func (s *reviewService) notifyReviewee(ctx context.Context, review *model.Review) {
	reviewee, err := s.users.FindByID(ctx, review.RevieweeID)
	if err != nil {
		s.cfg.Log.Warn("Failed to load review recipient", "user_id", review.RevieweeID, "error", err)
		return
	}

	s.notifier.Notify(ctx, notify.Event{
		Type:           notify.EventReviewReceived,
		RecipientEmail: reviewee.Email,
		RecipientName:  reviewee.Name,
		Subject:        "You received a new review",
		Body:           "A learner left a review on one of your completed sessions.",
	})
}
