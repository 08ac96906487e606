package favorite

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/rs/zerolog/log"
)

type Service interface {
	Add(ctx context.Context, userID, eventID string) (*domain.Favorite, error)
	Remove(ctx context.Context, userID, eventID string) error
	List(ctx context.Context, userID string) ([]domain.Event, error)
}

type favoriteStore interface {
	Put(ctx context.Context, f *domain.Favorite) error
	Delete(ctx context.Context, userID, eventID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error)
}

type eventLookup interface {
	Get(ctx context.Context, eventID string) (*domain.Event, error)
}

type notifier interface {
	Create(ctx context.Context, userID, notificationType string, data any) (*domain.Notification, error)
}

type ServiceDeps struct {
	FavoriteRepo  favoriteStore
	EventRepo     eventLookup
	Notifications notifier
}

type service struct {
	favorites     favoriteStore
	events        eventLookup
	notifications notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		favorites:     deps.FavoriteRepo,
		events:        deps.EventRepo,
		notifications: deps.Notifications,
	}
}

func (s *service) Add(ctx context.Context, userID, eventID string) (*domain.Favorite, error) {
	e, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	f := &domain.Favorite{UserID: userID, EventID: eventID, CreatedAt: time.Now().UTC()}
	if err := s.favorites.Put(ctx, f); err != nil {
		return nil, err
	}
	if e.CreatorID != "" && e.CreatorID != userID {
		data := map[string]string{"event_id": e.EventID, "title": e.Title, "user_id": userID}
		if _, err := s.notifications.Create(ctx, e.CreatorID, domain.NotificationEventFavorited, data); err != nil {
			log.Warn().Err(err).Str("event_id", e.EventID).Msg("notify event favorited")
		}
	}
	return f, nil
}

func (s *service) Remove(ctx context.Context, userID, eventID string) error {
	return s.favorites.Delete(ctx, userID, eventID)
}

// List returns the user's favorited events, most recently favorited first.
// Favorites whose event no longer exists are skipped.
func (s *service) List(ctx context.Context, userID string) ([]domain.Event, error) {
	favorites, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(favorites, func(i, j int) bool { return favorites[i].CreatedAt.After(favorites[j].CreatedAt) })

	events := make([]domain.Event, 0, len(favorites))
	for _, f := range favorites {
		e, err := s.events.Get(ctx, f.EventID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, nil
}
