package rating

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	fieldRating = "rating"
	fieldReview = "review"
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateRatingRequest) (*domain.Rating, error)
	Update(ctx context.Context, userID, ratingID string, req domain.UpdateRatingRequest) (*domain.Rating, error)
	Delete(ctx context.Context, userID, ratingID string) error
	ListByEvent(ctx context.Context, eventID string) ([]domain.Rating, error)
}

type ratingStore interface {
	Put(ctx context.Context, r *domain.Rating) error
	Get(ctx context.Context, ratingID string) (*domain.Rating, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Rating, error)
	Update(ctx context.Context, ratingID string, updates map[string]interface{}) error
	Delete(ctx context.Context, ratingID string) error
}

type eventStore interface {
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	SetRatingStats(ctx context.Context, eventID string, average float64, total int) error
}

type notifier interface {
	Create(ctx context.Context, userID, notificationType string, data any) (*domain.Notification, error)
}

type ServiceDeps struct {
	RatingRepo    ratingStore
	EventRepo     eventStore
	Notifications notifier
}

type service struct {
	ratings       ratingStore
	events        eventStore
	notifications notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		ratings:       deps.RatingRepo,
		events:        deps.EventRepo,
		notifications: deps.Notifications,
	}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateRatingRequest) (*domain.Rating, error) {
	e, err := s.events.Get(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &domain.Rating{
		RatingID:  ratingID(req.EventID, userID),
		EventID:   req.EventID,
		UserID:    userID,
		Rating:    req.Rating,
		Review:    req.Review,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.ratings.Put(ctx, r); errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("event %s already rated: %w", req.EventID, domain.ErrConflict)
	} else if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, req.EventID); err != nil {
		return nil, err
	}

	if e.CreatorID != "" && e.CreatorID != userID {
		data := map[string]any{"event_id": e.EventID, "title": e.Title, "rating": r.Rating}
		if _, err := s.notifications.Create(ctx, e.CreatorID, domain.NotificationEventRated, data); err != nil {
			log.Warn().Err(err).Str("event_id", e.EventID).Msg("notify event rated")
		}
	}
	return r, nil
}

func (s *service) Update(ctx context.Context, userID, ratingID string, req domain.UpdateRatingRequest) (*domain.Rating, error) {
	r, err := s.owned(ctx, userID, ratingID)
	if err != nil {
		return nil, err
	}
	err = s.ratings.Update(ctx, ratingID, map[string]interface{}{
		fieldRating: req.Rating,
		fieldReview: req.Review,
	})
	if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, r.EventID); err != nil {
		return nil, err
	}
	return s.ratings.Get(ctx, ratingID)
}

func (s *service) Delete(ctx context.Context, userID, ratingID string) error {
	r, err := s.owned(ctx, userID, ratingID)
	if err != nil {
		return err
	}
	if err := s.ratings.Delete(ctx, ratingID); err != nil {
		return err
	}
	return s.recompute(ctx, r.EventID)
}

func (s *service) ListByEvent(ctx context.Context, eventID string) ([]domain.Rating, error) {
	ratings, err := s.ratings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ratings, func(i, j int) bool { return ratings[i].CreatedAt.After(ratings[j].CreatedAt) })
	return ratings, nil
}

// ratingID derives the id from the (event, user) pair, so the store's
// insert-if-absent condition enforces one rating per user per event.
func ratingID(eventID, userID string) string {
	return eventID + "_" + userID
}

func (s *service) owned(ctx context.Context, userID, ratingID string) (*domain.Rating, error) {
	r, err := s.ratings.Get(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, fmt.Errorf("rating %s: %w", ratingID, domain.ErrForbidden)
	}
	return r, nil
}

// recompute rewrites the event's average and total from its current ratings.
// An event that has since been deleted is left alone.
func (s *service) recompute(ctx context.Context, eventID string) error {
	ratings, err := s.ratings.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	average := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Rating
		}
		average = float64(sum) / float64(len(ratings))
	}
	err = s.events.SetRatingStats(ctx, eventID, average, len(ratings))
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
