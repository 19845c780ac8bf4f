package service

import (
	"context"
	"io"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	listingserrors "skillex/internal/listings/errors"
	"skillex/internal/listings/validator"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/logger"
	"skillex/pkg/model"
)

const (
	teacherID = "6653f1a2b3c4d5e6f7a8b9c1"
	viewerID  = "6653f1a2b3c4d5e6f7a8b9c0"
	listingID = "6653f1a2b3c4d5e6f7a8b9c2"
)

type mockListingRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.Listing, error)
	findByIDsFn  func(ctx context.Context, ids []string) ([]*model.Listing, error)
	addImageFn   func(ctx context.Context, id string, url string, maxImages int) (bool, error)
	viewsBumped  int
	favoriteAdds []int
}

func (m *mockListingRepo) Create(ctx context.Context, listing *model.Listing) error {
	listing.ID = listingID
	return nil
}

func (m *mockListingRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, listingserrors.ErrNotFound
}

func (m *mockListingRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error) {
	if m.findByIDsFn != nil {
		return m.findByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockListingRepo) Search(ctx context.Context, filter *model.ListingFilter, limit int, skip int64) ([]*model.Listing, error) {
	return nil, nil
}

func (m *mockListingRepo) CountSearch(ctx context.Context, filter *model.ListingFilter) (int64, error) {
	return 0, nil
}

func (m *mockListingRepo) Update(ctx context.Context, id string, fields bson.M) error { return nil }

func (m *mockListingRepo) Delete(ctx context.Context, id string) error { return nil }

func (m *mockListingRepo) IncrementViews(ctx context.Context, id string) error {
	m.viewsBumped++
	return nil
}

func (m *mockListingRepo) AdjustFavoritesCount(ctx context.Context, id string, delta int) error {
	m.favoriteAdds = append(m.favoriteAdds, delta)
	return nil
}

func (m *mockListingRepo) AddImage(ctx context.Context, id string, url string, maxImages int) (bool, error) {
	if m.addImageFn != nil {
		return m.addImageFn(ctx, id, url, maxImages)
	}
	return true, nil
}

func (m *mockListingRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockListingRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	return 0, nil
}

func (m *mockListingRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

// memoryFavoriteRepo enforces pair uniqueness like the real unique index.
type memoryFavoriteRepo struct {
	pairs map[string]time.Time
}

func key(userID, listingID string) string { return userID + "/" + listingID }

func (m *memoryFavoriteRepo) Create(ctx context.Context, favorite *model.Favorite) error {
	if m.pairs == nil {
		m.pairs = make(map[string]time.Time)
	}
	k := key(favorite.UserID, favorite.ListingID)
	if _, ok := m.pairs[k]; ok {
		return listingserrors.ErrDuplicateFavorite
	}
	m.pairs[k] = time.Now()
	return nil
}

func (m *memoryFavoriteRepo) Delete(ctx context.Context, userID, listingID string) error {
	k := key(userID, listingID)
	if _, ok := m.pairs[k]; !ok {
		return listingserrors.ErrFavoriteNotFound
	}
	delete(m.pairs, k)
	return nil
}

func (m *memoryFavoriteRepo) DeleteByListing(ctx context.Context, listingID string) error {
	return nil
}

func (m *memoryFavoriteRepo) FindListingIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var out []string
	for k := range m.pairs {
		if len(k) > len(userID) && k[:len(userID)] == userID {
			out = append(out, k[len(userID)+1:])
		}
	}
	return out, nil
}

type mockUserRepo struct{}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return &model.User{ID: id}, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindPublicByID(ctx context.Context, id string) (*model.PublicUser, error) {
	return &model.PublicUser{ID: id, Name: "Teacher"}, nil
}

func (m *mockUserRepo) FindPublicByIDs(ctx context.Context, ids []string) (map[string]*model.PublicUser, error) {
	out := make(map[string]*model.PublicUser, len(ids))
	for _, id := range ids {
		out[id] = &model.PublicUser{ID: id}
	}
	return out, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id string, fields bson.M) error { return nil }

func (m *mockUserRepo) UpdateRating(ctx context.Context, id string, summary model.RatingSummary) error {
	return nil
}

func (m *mockUserRepo) FindAll(ctx context.Context, limit int, skip int64) ([]*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockUserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

type mockMediaStore struct {
	uploads int
	deletes []string
	url     string
}

func (m *mockMediaStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	m.uploads++
	if m.url == "" {
		m.url = "https://cdn.example.com/img.jpg"
	}
	return m.url, nil
}

func (m *mockMediaStore) Delete(ctx context.Context, imageURL string) {
	m.deletes = append(m.deletes, imageURL)
}

func testConfig() *config.Config {
	return &config.Config{
		CloudinaryFolder: "skillex",
		Log:              logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard}),
	}
}

func newService(repo *mockListingRepo, favorites *memoryFavoriteRepo, mediaStore *mockMediaStore) ListingService {
	cfg := testConfig()
	return NewListingService(repo, favorites, &mockUserRepo{}, validator.NewListingValidator(cfg.Log), mediaStore, cfg)
}

func ownedListing() *model.Listing {
	return &model.Listing{
		ID:          listingID,
		TeacherID:   teacherID,
		Title:       "Conversational Spanish",
		Description: "Weekly one-on-one conversation practice",
		Category:    "Languages",
		Price:       25,
		Duration:    60,
		Location:    model.ListingLocation{Type: "online"},
		Status:      model.ListingActive,
	}
}

func assertAppError(t *testing.T, err error, code string, message string) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != code {
		t.Errorf("Code = %s, want %s", appErr.Code, code)
	}
	if message != "" && appErr.Message != message {
		t.Errorf("Message = %q, want %q", appErr.Message, message)
	}
}

func TestCreateListingRole(t *testing.T) {
	svc := newService(&mockListingRepo{}, &memoryFavoriteRepo{}, &mockMediaStore{})

	listing := ownedListing()
	listing.ID = ""
	err := svc.Create(context.Background(), model.Identity{UserID: viewerID, Role: model.RoleLearner}, listing)
	assertAppError(t, err, apperrors.CodeForbidden, "Only teachers can create listings")

	listing = ownedListing()
	listing.ID = ""
	listing.Status = ""
	if err := svc.Create(context.Background(), model.Identity{UserID: teacherID, Role: model.RoleTeacher}, listing); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if listing.Status != model.ListingActive {
		t.Errorf("Status = %s, want %s as default", listing.Status, model.ListingActive)
	}
}

func TestGetByIDViews(t *testing.T) {
	repo := &mockListingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return ownedListing(), nil
		},
	}
	svc := newService(repo, &memoryFavoriteRepo{}, &mockMediaStore{})

	if _, err := svc.GetByID(context.Background(), listingID, viewerID); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if repo.viewsBumped != 1 {
		t.Errorf("views bumped %d times for a stranger view, want 1", repo.viewsBumped)
	}

	if _, err := svc.GetByID(context.Background(), listingID, teacherID); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if repo.viewsBumped != 1 {
		t.Errorf("owner view must not bump views, got %d", repo.viewsBumped)
	}
}

func TestFavoriteLifecycle(t *testing.T) {
	repo := &mockListingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return ownedListing(), nil
		},
	}
	svc := newService(repo, &memoryFavoriteRepo{}, &mockMediaStore{})
	viewer := model.Identity{UserID: viewerID, Role: model.RoleLearner}

	if err := svc.Favorite(context.Background(), viewer, listingID); err != nil {
		t.Fatalf("Favorite() error = %v", err)
	}

	err := svc.Favorite(context.Background(), viewer, listingID)
	assertAppError(t, err, apperrors.CodeConflict, "Listing is already in favorites")

	if err := svc.Unfavorite(context.Background(), viewer, listingID); err != nil {
		t.Fatalf("Unfavorite() error = %v", err)
	}

	err = svc.Unfavorite(context.Background(), viewer, listingID)
	assertAppError(t, err, apperrors.CodeNotFound, "Favorite not found")

	// One increment for the add, one decrement for the remove.
	if len(repo.favoriteAdds) != 2 || repo.favoriteAdds[0] != 1 || repo.favoriteAdds[1] != -1 {
		t.Errorf("favorites count deltas = %v, want [1 -1]", repo.favoriteAdds)
	}
}

func TestAddImage(t *testing.T) {
	teacher := model.Identity{UserID: teacherID, Role: model.RoleTeacher}

	t.Run("at the image cap", func(t *testing.T) {
		repo := &mockListingRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
				l := ownedListing()
				l.Images = []string{"a", "b", "c"}
				return l, nil
			},
		}
		store := &mockMediaStore{}
		svc := newService(repo, &memoryFavoriteRepo{}, store)

		_, err := svc.AddImage(context.Background(), teacher, listingID, []byte("img"))
		assertAppError(t, err, apperrors.CodeConflict, "Listing already has the maximum of 3 images")
		if store.uploads != 0 {
			t.Errorf("upload should be skipped at the cap, got %d uploads", store.uploads)
		}
	})

	t.Run("loses the race for the last slot", func(t *testing.T) {
		repo := &mockListingRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
				return ownedListing(), nil
			},
			addImageFn: func(ctx context.Context, id string, url string, maxImages int) (bool, error) {
				return false, nil
			},
		}
		store := &mockMediaStore{}
		svc := newService(repo, &memoryFavoriteRepo{}, store)

		_, err := svc.AddImage(context.Background(), teacher, listingID, []byte("img"))
		assertAppError(t, err, apperrors.CodeConflict, "Listing already has the maximum of 3 images")
		if len(store.deletes) != 1 {
			t.Errorf("orphaned upload should be deleted, got deletes %v", store.deletes)
		}
	})

	t.Run("stranger cannot add", func(t *testing.T) {
		repo := &mockListingRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
				return ownedListing(), nil
			},
		}
		svc := newService(repo, &memoryFavoriteRepo{}, &mockMediaStore{})

		_, err := svc.AddImage(context.Background(), model.Identity{UserID: viewerID, Role: model.RoleTeacher}, listingID, []byte("img"))
		assertAppError(t, err, apperrors.CodeForbidden, "You can only modify your own listings")
	})
}

func TestUpdateListingOwnership(t *testing.T) {
	repo := &mockListingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			return ownedListing(), nil
		},
	}
	svc := newService(repo, &memoryFavoriteRepo{}, &mockMediaStore{})

	_, err := svc.Update(context.Background(), model.Identity{UserID: viewerID, Role: model.RoleTeacher}, listingID, &model.ListingUpdate{Title: "New title"})
	assertAppError(t, err, apperrors.CodeForbidden, "You can only modify your own listings")

	if _, err := svc.Update(context.Background(), model.Identity{UserID: teacherID, Role: model.RoleTeacher}, listingID, &model.ListingUpdate{Title: "New title"}); err != nil {
		t.Fatalf("Update() by owner error = %v", err)
	}

	// Admin override.
	if _, err := svc.Update(context.Background(), model.Identity{UserID: viewerID, Role: model.RoleAdmin}, listingID, &model.ListingUpdate{Title: "New title"}); err != nil {
		t.Fatalf("Update() by admin error = %v", err)
	}
}
