// Package internships runs the opportunity board: internship and event
// posts harvested from the CS department's announcement feed. A Source
// fetches raw messages (GroupMe in production), the parser classifies
// them by keyword, and parsed posts are kept in a kv.Store so list
// requests never wait on the upstream feed.
package internships

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/morganstate-cs/morganai/pkg/kv"
)

// Message is one raw post from an announcement feed.
type Message struct {
	ID        string
	Text      string
	CreatedAt time.Time
	Source    string
}

// Source fetches recent messages from an announcement feed.
type Source interface {
	// Fetch returns up to limit recent messages, newest first.
	Fetch(ctx context.Context, limit int) ([]Message, error)
}

// Internship is one parsed internship posting.
type Internship struct {
	ID              string    `msgpack:"id" json:"id"`
	Title           string    `msgpack:"title" json:"title"`
	Company         string    `msgpack:"company" json:"company"`
	Location        string    `msgpack:"location" json:"location"`
	Description     string    `msgpack:"description" json:"description"`
	ApplicationLink string    `msgpack:"application_link" json:"application_link,omitempty"`
	PostedAt        time.Time `msgpack:"posted_at" json:"posted_date"`
	Source          string    `msgpack:"source" json:"source"`
	Tags            []string  `msgpack:"tags" json:"tags,omitempty"`
}

// Event is one parsed campus event posting.
type Event struct {
	ID               string    `msgpack:"id" json:"id"`
	Title            string    `msgpack:"title" json:"title"`
	Description      string    `msgpack:"description" json:"description"`
	Date             time.Time `msgpack:"date" json:"date"`
	Location         string    `msgpack:"location" json:"location,omitempty"`
	RegistrationLink string    `msgpack:"registration_link" json:"registration_link,omitempty"`
	Organizer        string    `msgpack:"organizer" json:"organizer"`
	Tags             []string  `msgpack:"tags" json:"tags,omitempty"`
}

// Stats summarizes the stored board.
type Stats struct {
	TotalInternships int       `json:"total_internships"`
	TotalEvents      int       `json:"total_events"`
	UniqueCompanies  int       `json:"unique_companies"`
	TopCompanies     []string  `json:"top_companies"`
	LastRefreshed    time.Time `json:"last_refreshed,omitempty"`
}

// refreshLimit is how many feed messages one refresh scans.
const refreshLimit = 200

func internshipKey(id string) string { return kv.Join("board", "internships", id) }
func eventKey(id string) string      { return kv.Join("board", "events", id) }

const (
	internshipPrefix = "board/internships/"
	eventPrefix      = "board/events/"
	refreshedKey     = "board/refreshed"
)

// Service keeps the parsed board in a kv.Store and refreshes it from a
// Source on demand.
type Service struct {
	store kv.Store
	src   Source
}

// New creates a board service over the given store and feed.
func New(store kv.Store, src Source) *Service {
	return &Service{store: store, src: src}
}

// Refresh fetches the feed, reparses it, and stores every recognized
// post. Posts are keyed by feed message ID, so refreshing is idempotent
// and updated messages overwrite their earlier parse. Returns how many
// internships and events the feed currently holds.
func (s *Service) Refresh(ctx context.Context) (internships, events int, err error) {
	msgs, err := s.src.Fetch(ctx, refreshLimit)
	if err != nil {
		return 0, 0, fmt.Errorf("internships: fetch feed: %w", err)
	}

	for _, msg := range msgs {
		// A single announcement can carry both, e.g. a hiring info
		// session.
		if post, ok := parseInternship(msg); ok {
			if err := s.put(ctx, internshipKey(post.ID), post); err != nil {
				return internships, events, err
			}
			internships++
		}
		if post, ok := parseEvent(msg); ok {
			if err := s.put(ctx, eventKey(post.ID), post); err != nil {
				return internships, events, err
			}
			events++
		}
	}

	stamp, err := msgpack.Marshal(time.Now().UTC())
	if err == nil {
		err = s.store.Put(ctx, refreshedKey, stamp)
	}
	if err != nil {
		return internships, events, fmt.Errorf("internships: record refresh time: %w", err)
	}
	return internships, events, nil
}

func (s *Service) put(ctx context.Context, key string, post any) error {
	data, err := msgpack.Marshal(post)
	if err != nil {
		return fmt.Errorf("internships: encode post: %w", err)
	}
	return s.store.Put(ctx, key, data)
}

// List returns one page of internships, newest first, along with the
// total number stored.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Internship, int, error) {
	var all []Internship
	for entry, err := range s.store.Scan(ctx, internshipPrefix) {
		if err != nil {
			return nil, 0, fmt.Errorf("internships: scan: %w", err)
		}
		var post Internship
		if err := msgpack.Unmarshal(entry.Value, &post); err != nil {
			return nil, 0, fmt.Errorf("internships: decode post: %w", err)
		}
		all = append(all, post)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PostedAt.After(all[j].PostedAt) })

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Events returns stored events, soonest first. With upcomingOnly set,
// posts dated in the past are dropped.
func (s *Service) Events(ctx context.Context, upcomingOnly bool) ([]Event, error) {
	now := time.Now()
	var all []Event
	for entry, err := range s.store.Scan(ctx, eventPrefix) {
		if err != nil {
			return nil, fmt.Errorf("internships: scan: %w", err)
		}
		var post Event
		if err := msgpack.Unmarshal(entry.Value, &post); err != nil {
			return nil, fmt.Errorf("internships: decode post: %w", err)
		}
		if upcomingOnly && !post.Date.After(now) {
			continue
		}
		all = append(all, post)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all, nil
}

// Statistics summarizes the stored board.
func (s *Service) Statistics(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	companies := map[string]bool{}
	for entry, err := range s.store.Scan(ctx, internshipPrefix) {
		if err != nil {
			return nil, fmt.Errorf("internships: scan: %w", err)
		}
		var post Internship
		if err := msgpack.Unmarshal(entry.Value, &post); err != nil {
			return nil, fmt.Errorf("internships: decode post: %w", err)
		}
		stats.TotalInternships++
		if post.Company != "" && post.Company != "Unknown" {
			companies[post.Company] = true
		}
	}
	for _, err := range s.store.Scan(ctx, eventPrefix) {
		if err != nil {
			return nil, fmt.Errorf("internships: scan: %w", err)
		}
		stats.TotalEvents++
	}

	stats.UniqueCompanies = len(companies)
	for name := range companies {
		stats.TopCompanies = append(stats.TopCompanies, name)
	}
	sort.Strings(stats.TopCompanies)
	if len(stats.TopCompanies) > 10 {
		stats.TopCompanies = stats.TopCompanies[:10]
	}

	if stamp, err := s.store.Get(ctx, refreshedKey); err == nil {
		msgpack.Unmarshal(stamp, &stats.LastRefreshed)
	}
	return stats, nil
}
