package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/chama/pkg/middleware"
	"github.com/fkhayef/chama/pkg/response"
)

type fakeRepo struct {
	mu    sync.Mutex
	items []*Notification
}

func (f *fakeRepo) Create(_ context.Context, n *Notification) (*Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	cp.ID = int64(len(f.items) + 1)
	f.items = append(f.items, &cp)
	return &cp, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListByRecipientID(_ context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Notification
	for _, n := range f.items {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	total := len(out)
	start := min(offset, total)
	return out[start:min(start+limit, total)], total, nil
}

func (f *fakeRepo) MarkAsRead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeRepo) MarkAllAsRead(_ context.Context, recipientID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeRepo) GetUnreadCount(_ context.Context, recipientID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func counterValue(t *testing.T, d *Dispatcher, name string) float64 {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(d.Collectors()...)
	families, err := reg.Gather()
	require.NoError(t, err)

	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

// runToCompletion delivers everything queued and returns once Run exits
func runToCompletion(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))
}

func TestEventMessages(t *testing.T) {
	ok := Succeeded(EntityGroup, ActionCreate, 1, "Group Umoja created successfully!")
	assert.True(t, ok.Success)
	assert.Equal(t, "group.create", ok.RoutingKey())

	failed := Failed(EntityContribution, ActionUpdate, 4, errors.New("contribution not found"))
	assert.False(t, failed.Success)
	assert.Equal(t, "Error updating contribution: contribution not found", failed.Message)
	assert.Equal(t, "contribution.update", failed.RoutingKey())

	n := failed.toNotification()
	require.NotNil(t, n.RelatedEntityType)
	assert.Equal(t, "contribution", *n.RelatedEntityType)
	require.NotNil(t, n.RelatedEntityID)
	assert.Equal(t, int64(4), *n.RelatedEntityID)

	assert.Nil(t, Failed(EntityMember, ActionCreate, 0, errors.New("x")).toNotification().RelatedEntityID)
}

func TestDispatcher_DeliversQueuedEvents(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	d := NewDispatcher(repo, pub, 8)

	ctx := middleware.WithUserID(context.Background(), 3)
	d.Notify(ctx, Succeeded(EntityGroup, ActionCreate, 1, "Group Umoja created successfully!"))
	// no authenticated user: published only
	d.Notify(context.Background(), Succeeded(EntityGroup, ActionDelete, 1, "Group Umoja deleted successfully!"))
	assert.Equal(t, 2, d.Pending())

	runToCompletion(t, d)

	assert.Zero(t, d.Pending())
	require.Len(t, repo.items, 1)
	assert.Equal(t, int64(3), repo.items[0].RecipientID)
	assert.True(t, repo.items[0].Success)

	require.Len(t, pub.events, 2)
	assert.Equal(t, int64(3), pub.events[0].RecipientID)
	assert.False(t, pub.events[0].OccurredAt.IsZero())
	assert.Equal(t, float64(2), counterValue(t, d, "chama_notifications_delivered_total"))
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(&fakeRepo{}, nil, 1)

	d.Notify(context.Background(), Succeeded(EntityMember, ActionCreate, 1, "first"))
	d.Notify(context.Background(), Succeeded(EntityMember, ActionCreate, 2, "second"))

	assert.Equal(t, 1, d.Pending())
	assert.Equal(t, float64(1), counterValue(t, d, "chama_notifications_dropped_total"))
}

func TestDispatcher_PublishErrorDoesNotStopDelivery(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{err: errors.New("broker down")}
	d := NewDispatcher(repo, pub, 4)

	ctx := middleware.WithUserID(context.Background(), 1)
	d.Notify(ctx, Succeeded(EntityMember, ActionCreate, 1, "a"))
	d.Notify(ctx, Succeeded(EntityMember, ActionCreate, 2, "b"))

	runToCompletion(t, d)

	assert.Len(t, repo.items, 2)
	assert.Len(t, pub.events, 2)
}

func TestService_MarkAsRead(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	n, err := repo.Create(ctx, &Notification{RecipientID: 1, Message: "m"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, 99, 1), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, n.ID, 2), ErrNotRecipient)
	require.NoError(t, svc.MarkAsRead(ctx, n.ID, 1))

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func newTestRouter(repo Repository, userID int64) http.Handler {
	r := chi.NewRouter()
	if userID != 0 {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
			})
		})
	}
	r.Mount("/notifications", NewHandler(NewService(repo)).Routes())
	return r
}

func TestHandler(t *testing.T) {
	repo := &fakeRepo{}
	ctx := context.Background()
	for range 3 {
		_, err := repo.Create(ctx, &Notification{RecipientID: 1, Message: "m", Success: true})
		require.NoError(t, err)
	}
	other, err := repo.Create(ctx, &Notification{RecipientID: 2, Message: "other"})
	require.NoError(t, err)

	t.Run("requires a user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(repo, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("lists a page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(repo, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?per_page=2", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data []NotificationResponse `json:"data"`
			Meta response.Meta          `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Len(t, body.Data, 2)
		assert.Equal(t, 3, body.Meta.Total)
		assert.Equal(t, 2, body.Meta.TotalPages)
	})

	t.Run("cannot read someone else's notification", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notifications/"+strconv.FormatInt(other.ID, 10)+"/read", nil)
		newTestRouter(repo, 1).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("read all", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(repo, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		newTestRouter(repo, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":{"unread_count":0}}`, rec.Body.String())
	})
}
