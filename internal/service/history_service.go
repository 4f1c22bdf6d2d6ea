package service

import (
	"context"
	"fmt"
	"time"

	"github.com/example/goshop/internal/datamodels/history"
)

// HistoryEntry history row with its age for display
type HistoryEntry struct {
	*history.History
	Since string
}

type HistoryService struct {
	repo history.Repository
	now  func() time.Time
}

func NewHistoryService(repo history.Repository) *HistoryService {
	return &HistoryService{repo: repo, now: time.Now}
}

// List the user's purchases, newest first.
func (s *HistoryService) List(ctx context.Context, userID int64) ([]HistoryEntry, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]HistoryEntry, 0, len(rows))
	for _, h := range rows {
		out = append(out, HistoryEntry{History: h, Since: TimeSince(h.Date, now)})
	}
	return out, nil
}

var sinceUnits = []struct {
	name string
	d    time.Duration
}{
	{"year", 365 * 24 * time.Hour},
	{"month", 30 * 24 * time.Hour},
	{"day", 24 * time.Hour},
	{"hour", time.Hour},
	{"minute", time.Minute},
}

// TimeSince renders the largest whole unit between then and now, e.g.
// "3 days ago". Less than a minute is "just now".
func TimeSince(then, now time.Time) string {
	diff := now.Sub(then)
	for _, u := range sinceUnits {
		n := int64(diff / u.d)
		if n <= 0 {
			continue
		}
		if n == 1 {
			return fmt.Sprintf("1 %s ago", u.name)
		}
		return fmt.Sprintf("%d %ss ago", n, u.name)
	}
	return "just now"
}
