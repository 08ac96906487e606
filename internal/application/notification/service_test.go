package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory KV ---

type memKV struct {
	mu      sync.Mutex
	strings map[string]string
	ttls    map[string]time.Duration
	lists   map[string][]string

	failSet map[string]error // keyed by record key
	failGet map[string]error
}

func newMemKV() *memKV {
	return &memKV{
		strings: map[string]string{},
		ttls:    map[string]time.Duration{},
		lists:   map[string][]string{},
		failSet: map[string]error{},
		failGet: map[string]error{},
	}
}

func (m *memKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failSet[key]; err != nil {
		return err
	}
	m.strings[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failGet[key]; err != nil {
		return "", err
	}
	v, ok := m.strings[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.strings, key)
	delete(m.ttls, key)
	return nil
}

// LRange follows Redis semantics: negative indices count from the tail and
// out-of-range windows are clamped.
func (m *memKV) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.lists[key]
	n := int64(len(l))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return []string{}, nil
	}
	out := make([]string, stop-start+1)
	copy(out, l[start:stop+1])
	return out, nil
}

func (m *memKV) LRem(_ context.Context, key string, _ int64, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.lists[key][:0]
	for _, v := range m.lists[key] {
		if v != value {
			kept = append(kept, v)
		}
	}
	m.lists[key] = kept
	return nil
}

func (m *memKV) LLen(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.lists[key])), nil
}

func (m *memKV) PushCapped(_ context.Context, key, value string, capacity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := append([]string{value}, m.lists[key]...)
	if int64(len(l)) > capacity {
		l = l[:capacity]
	}
	m.lists[key] = l
	return nil
}

// --- helpers ---

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestService(kv *memKV) (Service, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	seq := 0
	var mu sync.Mutex
	svc := NewService(ServiceDeps{
		KV:  kv,
		Now: clock.now,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("n%03d", seq)
		},
	})
	return svc, clock
}

func createN(t *testing.T, svc Service, userID string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		created, err := svc.Create(context.Background(), userID, "test", map[string]int{"seq": i + 1})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	return ids
}

func idsOf(ns []domain.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

// --- Create ---

func TestCreate_PersistsRecordAndIndex(t *testing.T) {
	kv := newMemKV()
	svc, clock := newTestService(kv)

	n, err := svc.Create(context.Background(), "u1", domain.NotificationEventRated, map[string]string{"event_id": "e1"})
	require.NoError(t, err)

	assert.Equal(t, "n001", n.ID)
	assert.Equal(t, "u1", n.UserID)
	assert.Equal(t, domain.NotificationEventRated, n.Type)
	assert.False(t, n.Read)
	assert.True(t, clock.t.Equal(n.CreatedAt))
	assert.JSONEq(t, `{"event_id":"e1"}`, string(n.Data))

	assert.Equal(t, DefaultTTL, kv.ttls["notification:n001"])
	assert.Equal(t, []string{"n001"}, kv.lists["user:notifications:u1"])

	var stored domain.Notification
	require.NoError(t, json.Unmarshal([]byte(kv.strings["notification:n001"]), &stored))
	assert.Equal(t, "u1", stored.UserID)
	assert.False(t, stored.Read)
}

func TestCreate_NilDataOmitted(t *testing.T) {
	kv := newMemKV()
	svc, _ := newTestService(kv)

	n, err := svc.Create(context.Background(), "u1", "ping", nil)
	require.NoError(t, err)
	assert.Nil(t, n.Data)
	assert.NotContains(t, kv.strings["notification:"+n.ID], `"data"`)
}

func TestCreate_RequiresUser(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	_, err := svc.Create(context.Background(), "", "ping", nil)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestCreate_StoreFailurePropagates(t *testing.T) {
	kv := newMemKV()
	boom := errors.New("connection refused")
	kv.failSet["notification:n001"] = boom
	svc, _ := newTestService(kv)

	_, err := svc.Create(context.Background(), "u1", "ping", nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, kv.lists["user:notifications:u1"])
}

func TestCreate_CapKeepsNewestHundred(t *testing.T) {
	kv := newMemKV()
	svc, _ := newTestService(kv)
	ids := createN(t, svc, "u1", 130)

	index := kv.lists["user:notifications:u1"]
	require.Len(t, index, DefaultCap)
	for i, got := range index {
		assert.Equal(t, ids[len(ids)-1-i], got)
	}
	// Evicted ids keep their records until they expire on their own.
	_, ok := kv.strings["notification:"+ids[0]]
	assert.True(t, ok)
}

func TestCreate_CustomCap(t *testing.T) {
	kv := newMemKV()
	svc := NewService(ServiceDeps{KV: kv, Cap: 3})
	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), "u1", "ping", nil)
		require.NoError(t, err)
	}
	assert.Len(t, kv.lists["user:notifications:u1"], 3)
}

// --- List ---

func TestList_SecondPageNewestFirst(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	ids := createN(t, svc, "u1", 25) // ids[0] is N1, ids[24] is N25

	page, err := svc.List(context.Background(), "u1", 2, 10)
	require.NoError(t, err)

	want := []string{}
	for n := 15; n >= 6; n-- {
		want = append(want, ids[n-1])
	}
	assert.Equal(t, want, idsOf(page.Notifications))
	assert.Equal(t, domain.Pagination{Page: 2, Limit: 10, Total: 25}, page.Pagination)
}

func TestList_PastTheEndIsEmpty(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	createN(t, svc, "u1", 3)

	page, err := svc.List(context.Background(), "u1", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
	assert.NotNil(t, page.Notifications)
	assert.Equal(t, 3, page.Pagination.Total)
}

func TestList_HugePageDoesNotWrapToTail(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	createN(t, svc, "u1", 10)

	for _, page := range []int{1 << 62, math.MaxInt} {
		got, err := svc.List(context.Background(), "u1", page, 4)
		require.NoError(t, err)
		assert.Empty(t, got.Notifications, "page %d", page)
		assert.NotNil(t, got.Notifications)
		assert.Equal(t, 10, got.Pagination.Total)
	}
}

func TestList_RejectsNonPositiveWindow(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	_, err := svc.List(context.Background(), "u1", 0, 10)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	_, err = svc.List(context.Background(), "u1", 1, 0)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestList_SkipsExpiredRecords(t *testing.T) {
	kv := newMemKV()
	svc, _ := newTestService(kv)
	ids := createN(t, svc, "u1", 5)

	require.NoError(t, kv.Del(context.Background(), "notification:"+ids[2]))

	page, err := svc.List(context.Background(), "u1", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[4], ids[3], ids[1], ids[0]}, idsOf(page.Notifications))
	assert.Equal(t, 5, page.Pagination.Total)

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestList_StoreFailurePropagates(t *testing.T) {
	kv := newMemKV()
	svc, _ := newTestService(kv)
	ids := createN(t, svc, "u1", 3)
	boom := errors.New("timeout")
	kv.failGet["notification:"+ids[1]] = boom

	_, err := svc.List(context.Background(), "u1", 1, 10)
	assert.ErrorIs(t, err, boom)
}

// --- MarkAsRead ---

func TestMarkAsRead_OwnershipAndExistence(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	ids := createN(t, svc, "owner", 1)

	_, err := svc.MarkAsRead(context.Background(), "intruder", ids[0])
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.MarkAsRead(context.Background(), "owner", "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkAsRead_Idempotent(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	ids := createN(t, svc, "u1", 1)

	first, err := svc.MarkAsRead(context.Background(), "u1", ids[0])
	require.NoError(t, err)
	assert.True(t, first.Read)

	second, err := svc.MarkAsRead(context.Background(), "u1", ids[0])
	require.NoError(t, err)
	assert.True(t, second.Read)
}

func TestMarkAsRead_KeepsOriginalExpiry(t *testing.T) {
	kv := newMemKV()
	svc, clock := newTestService(kv)
	ids := createN(t, svc, "u1", 1)

	clock.t = clock.t.Add(10 * 24 * time.Hour)
	_, err := svc.MarkAsRead(context.Background(), "u1", ids[0])
	require.NoError(t, err)
	assert.Equal(t, 20*24*time.Hour, kv.ttls["notification:"+ids[0]])
}

// --- MarkAllAsRead ---

func TestMarkAllAsRead_MarksEveryPresentRecord(t *testing.T) {
	kv := newMemKV()
	svc, _ := newTestService(kv)
	ids := createN(t, svc, "u1", 6)
	_, err := svc.MarkAsRead(context.Background(), "u1", ids[0])
	require.NoError(t, err)
	require.NoError(t, kv.Del(context.Background(), "notification:"+ids[1]))

	res, err := svc.MarkAllAsRead(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Updated)
	assert.Zero(t, res.Failed)
	assert.Equal(t, "All notifications marked as read", res.Message)

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllAsRead_PartialFailureDoesNotRollBack(t *testing.T) {
	kv := newMemKV()
	svc, _ := newTestService(kv)
	ids := createN(t, svc, "u1", 4)
	boom := errors.New("write failed")
	kv.failSet["notification:"+ids[2]] = boom

	res, err := svc.MarkAllAsRead(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.Updated)
	assert.Equal(t, 1, res.Failed)

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkAllAsRead_EmptyIndex(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	res, err := svc.MarkAllAsRead(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, res.Updated)
}

// --- Delete ---

func TestDelete_RemovesRecordAndIndexEntry(t *testing.T) {
	kv := newMemKV()
	svc, _ := newTestService(kv)
	ids := createN(t, svc, "u1", 3)

	require.NoError(t, svc.Delete(context.Background(), "u1", ids[1]))

	page, err := svc.List(context.Background(), "u1", 1, 10)
	require.NoError(t, err)
	assert.NotContains(t, idsOf(page.Notifications), ids[1])
	assert.Equal(t, 2, page.Pagination.Total)

	_, err = svc.MarkAsRead(context.Background(), "u1", ids[1])
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_OwnershipAndExistence(t *testing.T) {
	kv := newMemKV()
	svc, _ := newTestService(kv)
	ids := createN(t, svc, "owner", 1)

	assert.ErrorIs(t, svc.Delete(context.Background(), "intruder", ids[0]), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), "owner", "missing"), domain.ErrNotFound)
	assert.Contains(t, kv.lists["user:notifications:owner"], ids[0])
}

// --- UnreadCount ---

func TestUnreadCount_CreatedMinusRead(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	ids := createN(t, svc, "u1", 7)
	for _, nid := range ids[:3] {
		_, err := svc.MarkAsRead(context.Background(), "u1", nid)
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestUnreadCount_IsolatedPerUser(t *testing.T) {
	svc, _ := newTestService(newMemKV())
	createN(t, svc, "u1", 2)
	createN(t, svc, "u2", 5)

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
