package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "skillex/internal/bookings/errors"
	"skillex/internal/bookings/repository"
	"skillex/internal/bookings/validator"
	listingserrors "skillex/internal/listings/errors"
	listingsrepo "skillex/internal/listings/repository"
	usersrepo "skillex/internal/users/repository"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/model"
	"skillex/pkg/notify"
	"skillex/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, identity model.Identity, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, identity model.Identity, id string) (*model.Booking, error)
	List(ctx context.Context, identity model.Identity, filter *model.BookingFilter, limit int, skip int64) ([]*model.Booking, int64, error)
	Confirm(ctx context.Context, identity model.Identity, id string) (*model.Booking, error)
	Cancel(ctx context.Context, identity model.Identity, id string) (*model.Booking, error)
	Complete(ctx context.Context, identity model.Identity, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	listings  listingsrepo.ListingRepository
	users     usersrepo.UserRepository
	validator *validator.BookingValidator
	notifier  notify.Notifier
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	listings listingsrepo.ListingRepository,
	users usersrepo.UserRepository,
	validator *validator.BookingValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		listings:  listings,
		users:     users,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Create opens a pending booking. Uniqueness of (learner, listing, date)
// over non-terminal bookings is enforced twice: a transactional pre-check
// for a friendly message, and the partial unique index as the backstop for
// concurrent requests.
func (s *bookingService) Create(ctx context.Context, identity model.Identity, req *model.BookingRequest) (*model.Booking, error) {
	req.RequestedTime = sanitizer.TrimAndNormalize(req.RequestedTime)
	req.Message = sanitizer.TrimAndNormalize(req.Message)

	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	requestedDate, err := s.validator.ParseRequestedDate(req.RequestedDate)
	if err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	listing, err := s.listings.FindByID(ctx, req.ListingID)
	if err != nil {
		switch {
		case errors.Is(err, listingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Listing", req.ListingID)
		case errors.Is(err, listingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid listing ID format")
		default:
			return nil, apperrors.Internal("Failed to load listing", err)
		}
	}

	if listing.Status != model.ListingActive {
		return nil, apperrors.InvalidState("Listing is not active")
	}
	if listing.TeacherID == identity.UserID {
		return nil, apperrors.Forbidden("You cannot book your own listing")
	}

	booking := &model.Booking{
		LearnerID:     identity.UserID,
		TeacherID:     listing.TeacherID,
		ListingID:     listing.ID,
		RequestedDate: requestedDate,
		RequestedTime: req.RequestedTime,
		Message:       req.Message,
		Status:        model.BookingPending,
	}

	if err := s.validator.Validate(booking); err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		exists, err := s.repo.ExistsActive(sessCtx, booking.LearnerID, booking.ListingID, booking.RequestedDate)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if exists {
			return apperrors.Conflict("You already have a booking for this listing on this date")
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicate) {
				return apperrors.Conflict("You already have a booking for this listing on this date")
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"learner_id", booking.LearnerID,
			"listing_id", booking.ListingID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"learner_id", booking.LearnerID,
		"teacher_id", booking.TeacherID,
		"listing_id", booking.ListingID,
		"requested_date", booking.RequestedDate,
	)

	s.notifyParty(ctx, booking.TeacherID, notify.EventBookingRequested,
		"New booking request",
		fmt.Sprintf("You have a new booking request for %q on %s.", listing.Title, req.RequestedDate))

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(booking, identity) {
		return nil, apperrors.Forbidden("You are not part of this booking")
	}

	s.embedRelations(ctx, []*model.Booking{booking})
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, identity model.Identity, filter *model.BookingFilter, limit int, skip int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByFilter(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByFilter(ctx, filter, limit, skip)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.embedRelations(ctx, bookings)
	return bookings, count, nil
}

func (s *bookingService) Confirm(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	return s.transition(ctx, identity, id, transitionSpec{
		action:      "confirm",
		target:      model.BookingConfirmed,
		from:        []string{model.BookingPending},
		teacherOnly: true,
		event:       notify.EventBookingConfirmed,
		subject:     "Booking confirmed",
		body:        "Your booking request has been confirmed.",
		notifyID:    func(b *model.Booking) string { return b.LearnerID },
	})
}

func (s *bookingService) Cancel(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	return s.transition(ctx, identity, id, transitionSpec{
		action:  "cancel",
		target:  model.BookingCancelled,
		from:    []string{model.BookingPending, model.BookingConfirmed},
		event:   notify.EventBookingCancelled,
		subject: "Booking cancelled",
		body:    "A booking you are part of has been cancelled.",
		notifyID: func(b *model.Booking) string {
			if identity.UserID == b.LearnerID {
				return b.TeacherID
			}
			return b.LearnerID
		},
	})
}

func (s *bookingService) Complete(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	return s.transition(ctx, identity, id, transitionSpec{
		action:      "complete",
		target:      model.BookingCompleted,
		from:        []string{model.BookingConfirmed},
		teacherOnly: true,
		event:       notify.EventBookingCompleted,
		subject:     "Booking completed",
		body:        "Your booking has been marked as completed. You can now leave a review.",
		notifyID:    func(b *model.Booking) string { return b.LearnerID },
	})
}

type transitionSpec struct {
	action      string
	target      string
	from        []string
	teacherOnly bool
	event       string
	subject     string
	body        string
	notifyID    func(*model.Booking) string
}

// transition applies a status change with a conditional update, so two
// racing calls cannot both win. The loser re-reads the booking and gets an
// error naming its actual state.
func (s *bookingService) transition(ctx context.Context, identity model.Identity, id string, spec transitionSpec) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if spec.teacherOnly {
		if booking.TeacherID != identity.UserID && !identity.IsAdmin() {
			return nil, apperrors.Forbidden(fmt.Sprintf("Only the teacher can %s a booking", spec.action))
		}
	} else if !isParticipant(booking, identity) {
		return nil, apperrors.Forbidden("You are not part of this booking")
	}

	matched, err := s.repo.UpdateStatusIf(ctx, id, spec.from, spec.target)
	if err != nil {
		return nil, apperrors.Internal("Failed to update booking", err)
	}
	if !matched {
		current, err := s.findBooking(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, invalidTransition(spec.action, spec.target, current.Status)
	}

	booking.Status = spec.target
	s.cfg.Log.Info("Booking status changed", "id", id, "status", spec.target, "by", identity.UserID)

	s.notifyParty(ctx, spec.notifyID(booking), spec.event, spec.subject, spec.body)

	s.embedRelations(ctx, []*model.Booking{booking})
	return booking, nil
}

// invalidTransition names the booking's current status in the message.
func invalidTransition(action, target, current string) error {
	if current == target {
		return apperrors.InvalidState("Booking is already " + current)
	}
	if action == "complete" && current == model.BookingPending {
		return apperrors.InvalidState("Only confirmed bookings can be completed")
	}
	return apperrors.InvalidState(fmt.Sprintf("Cannot %s a %s booking", action, current))
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		default:
			return nil, apperrors.Internal("Failed to retrieve booking", err)
		}
	}
	return booking, nil
}

func isParticipant(booking *model.Booking, identity model.Identity) bool {
	return identity.UserID == booking.LearnerID ||
		identity.UserID == booking.TeacherID ||
		identity.IsAdmin()
}

func (s *bookingService) embedRelations(ctx context.Context, bookings []*model.Booking) {
	if len(bookings) == 0 {
		return
	}

	userIDs := make([]string, 0, len(bookings)*2)
	listingIDs := make([]string, 0, len(bookings))
	seen := make(map[string]bool)
	for _, b := range bookings {
		for _, id := range []string{b.LearnerID, b.TeacherID} {
			if !seen[id] {
				seen[id] = true
				userIDs = append(userIDs, id)
			}
		}
		if !seen[b.ListingID] {
			seen[b.ListingID] = true
			listingIDs = append(listingIDs, b.ListingID)
		}
	}

	users, err := s.users.FindPublicByIDs(ctx, userIDs)
	if err != nil {
		s.cfg.Log.Warn("Failed to embed booking users", "error", err)
		return
	}
	listings, err := s.listings.FindByIDs(ctx, listingIDs)
	if err != nil {
		s.cfg.Log.Warn("Failed to embed booking listings", "error", err)
		return
	}
	listingsByID := make(map[string]*model.Listing, len(listings))
	for _, l := range listings {
		listingsByID[l.ID] = l
	}

	for _, b := range bookings {
		b.Learner = users[b.LearnerID]
		b.Teacher = users[b.TeacherID]
		b.Listing = listingsByID[b.ListingID]
	}
}

// notifyParty queues an email event for the given user. Lookup or publish
// failures are logged and never fail the triggering operation.
func (s *bookingService) notifyParty(ctx context.Context, userID, event, subject, body string) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.cfg.Log.Warn("Failed to load notification recipient", "user_id", userID, "error", err)
		return
	}

	s.notifier.Notify(ctx, notify.Event{
		Type:           event,
		RecipientEmail: user.Email,
		RecipientName:  user.Name,
		Subject:        subject,
		Body:           body,
	})
}
