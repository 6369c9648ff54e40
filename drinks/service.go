// Package drinks implements the drink rating and comment aggregation
// service.
//
// Every mutation of a drink runs under a per-drink lock, so concurrent
// submissions for the same drink are applied one at a time and no update is
// lost. The comment ledger is the source of truth; the bounded window of
// recent comments embedded in the drink is a derived view and is only
// touched after the ledger write succeeded.
package drinks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// recentCommentLimit bounds the comment window embedded in a drink.
const recentCommentLimit = 10

// defaultPageSize is the number of ledger records served per comment page.
const defaultPageSize = 10

// A Store provides durable storage for drinks, users and the comment ledger.
type Store interface {
	ListDrinks(ctx context.Context, excludeIDs ...string) ([]Drink, error)
	GetDrink(ctx context.Context, id string) (Drink, error)
	SaveDrink(ctx context.Context, d Drink) error
	GetUser(ctx context.Context, id string) (User, error)
	SaveUser(ctx context.Context, u User) error
	InsertComment(ctx context.Context, c Comment) (Comment, error)
	ListCommentsBefore(ctx context.Context, drinkID string, before time.Time, limit int) ([]Comment, error)
}

// A Cache provides a storage layer that caches drinks for listing.
type Cache interface {
	ListDrinks(ctx context.Context) ([]Drink, error)
	UpsertDrink(ctx context.Context, d Drink) error
}

// A Publisher emits rating events for downstream consumers.
type Publisher interface {
	PublishRating(ctx context.Context, ev RatingEvent) error
}

// A RatingEvent describes one accepted rating submission.
type RatingEvent struct {
	Type      string    `json:"type"`
	DrinkID   string    `json:"drink_id"`
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Commented bool      `json:"commented"`
	Timestamp time.Time `json:"timestamp"`
}

// A Submission is one already-authenticated rating request: the score is
// mandatory, the comment optional.
type Submission struct {
	DrinkID string
	UserID  string
	Score   int
	Comment string
}

// Service applies rating submissions and serves drink and comment reads.
// Cache and Publisher are optional; when present their failures degrade the
// request (logged) rather than failing it.
type Service struct {
	Logger    *slog.Logger
	Store     Store
	Cache     Cache
	Publisher Publisher

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// drinkLock returns the mutex serializing all mutations of one drink.
func (s *Service) drinkLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Rate applies one submission: the score lands on the drink's rating
// distribution and, when comment text is present, the comment is appended to
// the ledger and mirrored into the drink's recent window. The distribution,
// the window and the total comment counter persist together in a single
// drink write.
//
// The ledger write comes first. If it fails, nothing has changed. If a
// later write fails, the durable half is reported through a
// PartialCommitError.
func (s *Service) Rate(ctx context.Context, sub Submission) (Drink, error) {
	lock := s.drinkLock(sub.DrinkID)
	lock.Lock()
	defer lock.Unlock()

	drink, err := s.Store.GetDrink(ctx, sub.DrinkID)
	if err != nil {
		return Drink{}, fmt.Errorf("load drink %q: %w", sub.DrinkID, err)
	}
	user, err := s.Store.GetUser(ctx, sub.UserID)
	if err != nil {
		return Drink{}, fmt.Errorf("load user %q: %w", sub.UserID, err)
	}

	// Reject bad scores before anything is written.
	if err := ApplyRating(&drink, sub.Score); err != nil {
		return Drink{}, err
	}

	commented := false
	if text := strings.TrimSpace(sub.Comment); text != "" {
		rec, err := s.Store.InsertComment(ctx, Comment{
			DrinkID:  drink.ID,
			Text:     text,
			PostedAt: s.now(),
			Seq:      int64(drink.TotalComments) + 1,
			Profile: Profile{
				Email:   user.Email,
				Name:    user.Name,
				Picture: user.Picture,
			},
		})
		if err != nil {
			return Drink{}, fmt.Errorf("insert comment: %w", err)
		}
		drink.TotalComments++
		drink.Comments = append([]Comment{rec}, drink.Comments...)
		if len(drink.Comments) > recentCommentLimit {
			drink.Comments = drink.Comments[:recentCommentLimit]
		}
		commented = true
	}

	if err := s.Store.SaveDrink(ctx, drink); err != nil {
		if commented {
			return Drink{}, &PartialCommitError{Committed: "comment", Failed: "rating", Err: err}
		}
		return Drink{}, fmt.Errorf("save drink: %w", err)
	}

	// Raw append: the tried list keeps duplicates on repeat ratings.
	user.Tried = append(user.Tried, drink.ID)
	if err := s.Store.SaveUser(ctx, user); err != nil {
		return Drink{}, &PartialCommitError{Committed: "rating", Failed: "tried update", Err: err}
	}

	if s.Cache != nil {
		if err := s.Cache.UpsertDrink(ctx, drink); err != nil {
			s.Logger.Error("Could not cache drink", "drink_id", drink.ID, "error", err.Error())
		}
	}
	if s.Publisher != nil {
		ev := RatingEvent{
			Type:      "new_rating",
			DrinkID:   drink.ID,
			UserID:    user.ID,
			Score:     sub.Score,
			Commented: commented,
			Timestamp: s.now(),
		}
		if err := s.Publisher.PublishRating(ctx, ev); err != nil {
			s.Logger.Error("Could not publish rating event", "drink_id", drink.ID, "error", err.Error())
		}
	}

	return drink, nil
}

// ListDrinks returns the catalog sorted by drink id, serving from the cache
// first and filling the remainder from storage. A cache failure degrades to
// a full storage read.
func (s *Service) ListDrinks(ctx context.Context) ([]Drink, error) {
	var cached []Drink
	if s.Cache != nil {
		var err error
		cached, err = s.Cache.ListDrinks(ctx)
		if err != nil {
			s.Logger.Error("Could not list drinks from cache", "error", err.Error())
			cached = nil
		}
	}

	ids := make([]string, len(cached))
	for i, d := range cached {
		ids[i] = d.ID
	}
	rest, err := s.Store.ListDrinks(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("list drinks: %w", err)
	}

	all := append(cached, rest...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// Comments returns up to limit ledger records for the drink posted strictly
// before the given time, newest first. The bounded window on the drink is
// never consulted, so records older than the window remain reachable. An
// empty page is not an error.
func (s *Service) Comments(ctx context.Context, drinkID string, before time.Time, limit int) ([]Comment, error) {
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	recs, err := s.Store.ListCommentsBefore(ctx, drinkID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return recs, nil
}

// SaveDrink toggles the drink on the user's saved list: removed when
// currently saved, added otherwise. The saved list has set semantics.
func (s *Service) SaveDrink(ctx context.Context, userID, drinkID string, saved bool) (User, error) {
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return User{}, fmt.Errorf("load user %q: %w", userID, err)
	}

	if saved {
		user.Saved = slices.DeleteFunc(user.Saved, func(id string) bool { return id == drinkID })
	} else if !slices.Contains(user.Saved, drinkID) {
		user.Saved = append(user.Saved, drinkID)
	}

	if err := s.Store.SaveUser(ctx, user); err != nil {
		return User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}
