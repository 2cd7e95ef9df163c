package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/fkhayef/chama/internal/notification"
)

// NotificationRepository implements notification.Repository
type NotificationRepository struct {
	s *Store
}

var _ notification.Repository = (*NotificationRepository)(nil)

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *n
	stored.ID = r.s.nextID("notifications")
	stored.IsRead = false
	stored.CreatedAt = r.s.now()
	r.s.notifications[stored.ID] = &stored

	cp := stored
	return &cp, nil
}

// GetByID returns the notification or nil
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

// ListByRecipientID returns one page of a recipient's notifications, newest first
func (r *NotificationRepository) ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*notification.Notification, int, error) {
	if err := checkContext(ctx); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*notification.Notification
	for _, n := range r.s.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		matched = append(matched, &cp)
	}
	slices.SortFunc(matched, func(a, b *notification.Notification) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})

	total := len(matched)
	start := min(offset, total)
	end := min(start+limit, total)
	return matched[start:end], total, nil
}

// MarkAsRead marks one notification as read
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id int64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if n, ok := r.s.notifications[id]; ok {
		n.IsRead = true
	}
	return nil
}

// MarkAllAsRead marks every notification of a recipient as read
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

// GetUnreadCount counts a recipient's unread notifications
func (r *NotificationRepository) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
