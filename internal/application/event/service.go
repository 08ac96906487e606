package event

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/event-locator/internal/pkg/id"
	"github.com/rs/zerolog/log"
)

const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldLocation    = "location"
	fieldAddress     = "address"
	fieldStartDate   = "start_date"
	fieldEndDate     = "end_date"
	fieldCapacity    = "capacity"
	fieldPrice       = "price"
	fieldImageURL    = "image_url"
	fieldStatus      = "status"
	fieldCategoryIDs = "category_ids"
)

// DefaultLimit is the page size used when a listing does not name one.
const DefaultLimit = 10

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req domain.CreateEventRequest) (*domain.Event, error)
	List(ctx context.Context, filter domain.EventFilter) (*domain.EventPage, error)
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	Update(ctx context.Context, actor domain.Actor, eventID string, req domain.UpdateEventRequest) (*domain.Event, error)
	Delete(ctx context.Context, actor domain.Actor, eventID string) error
	UploadImage(ctx context.Context, actor domain.Actor, eventID, filename string, body io.Reader) (*domain.Event, error)
}

type eventStore interface {
	Put(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	Scan(ctx context.Context, status string) ([]domain.Event, error)
	Update(ctx context.Context, eventID string, updates map[string]interface{}) error
	SetImageURL(ctx context.Context, eventID, url string) error
	Delete(ctx context.Context, eventID string) error
}

type categoryLookup interface {
	GetByName(ctx context.Context, name string) (*domain.Category, error)
}

type favoriteLister interface {
	ListByEvent(ctx context.Context, eventID string) ([]domain.Favorite, error)
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type notifier interface {
	Create(ctx context.Context, userID, notificationType string, data any) (*domain.Notification, error)
}

type ServiceDeps struct {
	EventRepo     eventStore
	CategoryRepo  categoryLookup
	FavoriteRepo  favoriteLister
	Images        imageStore
	Notifications notifier
}

type service struct {
	events        eventStore
	categories    categoryLookup
	favorites     favoriteLister
	images        imageStore
	notifications notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		events:        deps.EventRepo,
		categories:    deps.CategoryRepo,
		favorites:     deps.FavoriteRepo,
		images:        deps.Images,
		notifications: deps.Notifications,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req domain.CreateEventRequest) (*domain.Event, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("end date precedes start date: %w", domain.ErrBadRequest)
	}
	categories := req.CategoryIDs
	if categories == nil {
		categories = []string{}
	}
	now := time.Now().UTC()
	e := &domain.Event{
		EventID:     id.New(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Address:     req.Address,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Capacity:    req.Capacity,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Status:      domain.EventDraft,
		CreatorID:   actor.UserID,
		CategoryIDs: categories,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Put(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) List(ctx context.Context, filter domain.EventFilter) (*domain.EventPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultLimit
	}

	categoryID := ""
	if filter.Category != "" {
		c, err := s.categories.GetByName(ctx, filter.Category)
		if errors.Is(err, domain.ErrNotFound) {
			return emptyPage(filter.Page), nil
		}
		if err != nil {
			return nil, err
		}
		categoryID = c.CategoryID
	}

	all, err := s.events.Scan(ctx, filter.Status)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(filter.Search)
	matched := make([]domain.Event, 0, len(all))
	for _, e := range all {
		if categoryID != "" && !slices.Contains(e.CategoryIDs, categoryID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Title), search) &&
			!strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		if filter.StartDate != nil && e.StartDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.EndDate.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].StartDate.Before(matched[j].StartDate) })

	total := len(matched)
	pages := (total + filter.Limit - 1) / filter.Limit
	// Checking the page index against pages first keeps the offset product
	// bounded by total+limit.
	start := total
	if filter.Page-1 < pages {
		start = (filter.Page - 1) * filter.Limit
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return &domain.EventPage{
		Events: matched[start:end],
		Pagination: domain.PageCountStats{
			Total: total,
			Page:  filter.Page,
			Pages: pages,
		},
	}, nil
}

func (s *service) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.events.Get(ctx, eventID)
}

func (s *service) Update(ctx context.Context, actor domain.Actor, eventID string, req domain.UpdateEventRequest) (*domain.Event, error) {
	current, err := s.authorized(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}

	start, end := current.StartDate, current.EndDate
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		end = req.EndDate.UTC()
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date precedes start date: %w", domain.ErrBadRequest)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.Address != nil {
		updates[fieldAddress] = *req.Address
	}
	if req.StartDate != nil {
		updates[fieldStartDate] = start
	}
	if req.EndDate != nil {
		updates[fieldEndDate] = end
	}
	if req.Capacity != nil {
		updates[fieldCapacity] = *req.Capacity
	}
	if req.Price != nil {
		updates[fieldPrice] = *req.Price
	}
	if req.ImageURL != nil {
		updates[fieldImageURL] = *req.ImageURL
	}
	if req.Status != nil {
		updates[fieldStatus] = *req.Status
	}
	if req.CategoryIDs != nil {
		updates[fieldCategoryIDs] = *req.CategoryIDs
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := s.events.Update(ctx, eventID, updates); err != nil {
		return nil, err
	}
	updated, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	s.notifyFavoriters(ctx, actor.UserID, updated)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, eventID string) error {
	if _, err := s.authorized(ctx, actor, eventID); err != nil {
		return err
	}
	return s.events.Delete(ctx, eventID)
}

func (s *service) UploadImage(ctx context.Context, actor domain.Actor, eventID, filename string, body io.Reader) (*domain.Event, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !imageExtensions[ext] {
		return nil, fmt.Errorf("unsupported image type %q: %w", ext, domain.ErrBadRequest)
	}
	e, err := s.authorized(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("events/%s/%s%s", eventID, id.New(), ext)
	url, err := s.images.Upload(ctx, key, body, "")
	if err != nil {
		return nil, fmt.Errorf("upload event image: %w", err)
	}
	if err := s.events.SetImageURL(ctx, eventID, url); err != nil {
		return nil, err
	}
	e.ImageURL = url
	return e, nil
}

// authorized loads the event and checks that actor may modify it.
func (s *service) authorized(ctx context.Context, actor domain.Actor, eventID string) (*domain.Event, error) {
	e, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.CreatorID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrForbidden)
	}
	return e, nil
}

// notifyFavoriters tells everyone who favorited e about a change, except the
// user who made it.
func (s *service) notifyFavoriters(ctx context.Context, actorID string, e *domain.Event) {
	favorites, err := s.favorites.ListByEvent(ctx, e.EventID)
	if err != nil {
		log.Warn().Err(err).Str("event_id", e.EventID).Msg("list favoriters for update notification")
		return
	}
	data := map[string]string{"event_id": e.EventID, "title": e.Title, "status": e.Status}
	for _, f := range favorites {
		if f.UserID == actorID {
			continue
		}
		if _, err := s.notifications.Create(ctx, f.UserID, domain.NotificationEventUpdated, data); err != nil {
			log.Warn().Err(err).Str("event_id", e.EventID).Str("user_id", f.UserID).Msg("notify event update")
		}
	}
}

func emptyPage(page int) *domain.EventPage {
	return &domain.EventPage{Events: []domain.Event{}, Pagination: domain.PageCountStats{Page: page}}
}
