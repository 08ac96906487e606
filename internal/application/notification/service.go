package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/event-locator/internal/pkg/id"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTTL is the retention window of a notification record.
	DefaultTTL = 30 * 24 * time.Hour
	// DefaultCap is the maximum length of a user's notification index.
	DefaultCap = 100

	recordPrefix = "notification:"
	indexPrefix  = "user:notifications:"

	// fanOutLimit bounds concurrent per-record requests during index scans.
	fanOutLimit = 16
)

type Service interface {
	Create(ctx context.Context, userID, notificationType string, data any) (*domain.Notification, error)
	List(ctx context.Context, userID string, page, limit int) (*domain.NotificationPage, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (*domain.MarkAllResult, error)
	Delete(ctx context.Context, userID, notificationID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// KV is the key-value boundary the store is built on. Get must return an
// error wrapping domain.ErrNotFound for a missing or expired key.
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LRem(ctx context.Context, key string, count int64, value string) error
	LLen(ctx context.Context, key string) (int64, error)
	PushCapped(ctx context.Context, key, value string, capacity int64) error
}

type ServiceDeps struct {
	KV    KV
	TTL   time.Duration
	Cap   int
	NewID func() string
	Now   func() time.Time
}

type service struct {
	kv    KV
	ttl   time.Duration
	cap   int64
	newID func() string
	now   func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		kv:    deps.KV,
		ttl:   deps.TTL,
		cap:   int64(deps.Cap),
		newID: deps.NewID,
		now:   deps.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.cap <= 0 {
		s.cap = DefaultCap
	}
	if s.newID == nil {
		s.newID = id.New
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

func recordKey(notificationID string) string { return recordPrefix + notificationID }
func indexKey(userID string) string          { return indexPrefix + userID }

func (s *service) Create(ctx context.Context, userID, notificationType string, data any) (*domain.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrBadRequest)
	}
	n := &domain.Notification{
		ID:        s.newID(),
		UserID:    userID,
		Type:      notificationType,
		CreatedAt: s.now(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode notification data: %w", domain.ErrBadRequest)
		}
		n.Data = raw
	}

	if err := s.save(ctx, n); err != nil {
		return nil, err
	}
	if err := s.kv.PushCapped(ctx, indexKey(userID), n.ID, s.cap); err != nil {
		return nil, fmt.Errorf("index notification %s: %w", n.ID, err)
	}
	return n, nil
}

// List returns one newest-first window of the user's index. Ids whose record
// has expired are dropped, so a page may hold fewer than limit entries while
// Total still counts every indexed id.
func (s *service) List(ctx context.Context, userID string, page, limit int) (*domain.NotificationPage, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("page and limit must be positive: %w", domain.ErrBadRequest)
	}

	// A window starting beyond MaxInt64 cannot hold any index entry. Letting the
	// offset wrap would hand LRANGE a negative start, which reads from the tail.
	var ids []string
	if int64(page-1) <= (math.MaxInt64-int64(limit))/int64(limit) {
		start := int64(page-1) * int64(limit)
		stop := start + int64(limit) - 1
		var err error
		ids, err = s.kv.LRange(ctx, indexKey(userID), start, stop)
		if err != nil {
			return nil, fmt.Errorf("read notification index: %w", err)
		}
	}
	records, err := s.loadAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	total, err := s.kv.LLen(ctx, indexKey(userID))
	if err != nil {
		return nil, fmt.Errorf("count notification index: %w", err)
	}

	notifications := make([]domain.Notification, 0, len(records))
	for _, n := range records {
		if n != nil {
			notifications = append(notifications, *n)
		}
	}
	return &domain.NotificationPage{
		Notifications: notifications,
		Pagination:    domain.Pagination{Page: page, Limit: limit, Total: int(total)},
	}, nil
}

func (s *service) MarkAsRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	n, err := s.owned(ctx, userID, notificationID)
	if err != nil {
		return nil, err
	}
	n.Read = true
	if err := s.save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllAsRead is best-effort: every present record is written independently
// and a failed write neither stops nor rolls back the others. Failures are
// counted in the result and returned joined.
func (s *service) MarkAllAsRead(ctx context.Context, userID string) (*domain.MarkAllResult, error) {
	ids, err := s.kv.LRange(ctx, indexKey(userID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("read notification index: %w", err)
	}
	records, err := s.loadAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	errs := make([]error, len(records))
	pending := 0
	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for i, n := range records {
		if n == nil || n.Read || n.UserID != userID {
			continue
		}
		pending++
		g.Go(func() error {
			n.Read = true
			errs[i] = s.save(ctx, n)
			return nil
		})
	}
	_ = g.Wait()

	res := &domain.MarkAllResult{Message: "All notifications marked as read"}
	for _, err := range errs {
		if err != nil {
			res.Failed++
		}
	}
	res.Updated = pending - res.Failed
	if res.Failed > 0 {
		res.Message = "Some notifications could not be marked as read"
		log.Warn().Str("user_id", userID).Int("failed", res.Failed).Msg("partial failure marking notifications read")
		return res, fmt.Errorf("mark all notifications read: %w", errors.Join(errs...))
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, userID, notificationID string) error {
	if _, err := s.owned(ctx, userID, notificationID); err != nil {
		return err
	}
	if err := s.kv.Del(ctx, recordKey(notificationID)); err != nil {
		return fmt.Errorf("delete notification %s: %w", notificationID, err)
	}
	if err := s.kv.LRem(ctx, indexKey(userID), 0, notificationID); err != nil {
		return fmt.Errorf("unindex notification %s: %w", notificationID, err)
	}
	return nil
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	ids, err := s.kv.LRange(ctx, indexKey(userID), 0, -1)
	if err != nil {
		return 0, fmt.Errorf("read notification index: %w", err)
	}
	records, err := s.loadAll(ctx, ids)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range records {
		if n != nil && !n.Read {
			count++
		}
	}
	return count, nil
}

// owned loads a record and checks that userID owns it.
func (s *service) owned(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	n, err := s.load(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrForbidden)
	}
	return n, nil
}

func (s *service) load(ctx context.Context, notificationID string) (*domain.Notification, error) {
	raw, err := s.kv.Get(ctx, recordKey(notificationID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load notification %s: %w", notificationID, err)
	}
	var n domain.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, fmt.Errorf("decode notification %s: %w", notificationID, err)
	}
	return &n, nil
}

// loadAll fetches the records for ids concurrently, preserving order. Missing
// records come back as nil entries; any other failure aborts the scan.
func (s *service) loadAll(ctx context.Context, ids []string) ([]*domain.Notification, error) {
	out := make([]*domain.Notification, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, nid := range ids {
		g.Go(func() error {
			n, err := s.load(gctx, nid)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			out[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// save writes the record with whatever remains of its retention window, which
// is measured from CreatedAt. Rewrites never extend a record's life.
func (s *service) save(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification %s: %w", n.ID, err)
	}
	ttl := n.CreatedAt.Add(s.ttl).Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.kv.Set(ctx, recordKey(n.ID), string(body), ttl); err != nil {
		return fmt.Errorf("store notification %s: %w", n.ID, err)
	}
	return nil
}
