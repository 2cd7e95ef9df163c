// Package memory is an in-process implementation of every repository. All
// repositories obtained from one Store share a single lock, so cascading
// deletes and reference checks are atomic with respect to each other.
package memory

import (
	"cmp"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fkhayef/chama/internal/contribution"
	"github.com/fkhayef/chama/internal/group"
	"github.com/fkhayef/chama/internal/member"
	"github.com/fkhayef/chama/internal/notification"
	"github.com/fkhayef/chama/internal/user"
)

// Store holds every table in memory
type Store struct {
	mu sync.RWMutex

	groups        map[int64]*group.Group
	members       map[int64]*member.Member
	contributions map[int64]*contribution.Contribution
	users         map[int64]*user.User
	notifications map[int64]*notification.Notification

	lastID map[string]int64
	now    func() time.Time
}

// New creates an empty Store
func New() *Store {
	return &Store{
		groups:        make(map[int64]*group.Group),
		members:       make(map[int64]*member.Member),
		contributions: make(map[int64]*contribution.Contribution),
		users:         make(map[int64]*user.User),
		notifications: make(map[int64]*notification.Notification),
		lastID:        make(map[string]int64),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Groups returns the group repository
func (s *Store) Groups() *GroupRepository { return &GroupRepository{s: s} }

// Members returns the member repository
func (s *Store) Members() *MemberRepository { return &MemberRepository{s: s} }

// Contributions returns the contribution repository
func (s *Store) Contributions() *ContributionRepository { return &ContributionRepository{s: s} }

// Users returns the user repository
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Notifications returns the notification repository
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }

// nextID must be called with mu held for writing. IDs are never reused.
func (s *Store) nextID(table string) int64 {
	s.lastID[table]++
	return s.lastID[table]
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// compareNames orders names case-insensitively, falling back to byte order
// so distinct names never compare equal.
func compareNames(a, b string) int {
	return cmp.Or(cmp.Compare(strings.ToLower(a), strings.ToLower(b)), cmp.Compare(a, b))
}
