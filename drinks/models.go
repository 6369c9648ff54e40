package drinks

import "time"

// A Drink represents a drink in the catalog, together with its rating
// distribution and the bounded window of its newest comments. The window
// holds denormalized copies of the newest ledger records, newest first.
type Drink struct {
	ID            string    `json:"id"`
	Price         float64   `json:"price"`
	TotalComments int       `json:"totalComments"`
	Comments      []Comment `json:"comments"`
	Rate          Rating    `json:"rate"`
}

// Rating holds the per-score counters for a drink and the weighted mean
// derived from them.
type Rating struct {
	Rate    float64 `json:"rate"`
	Based   int     `json:"based"`
	Ratings Buckets `json:"ratings"`
}

// Buckets counts ratings received at each discrete score.
type Buckets struct {
	One   int `json:"one"`
	Two   int `json:"two"`
	Three int `json:"three"`
	Four  int `json:"four"`
	Five  int `json:"five"`
}

// A Comment is a single comment on a drink. The same shape serves both the
// ledger record (ID and Seq assigned by storage) and the denormalized
// snapshot embedded in the drink.
type Comment struct {
	ID       string    `json:"id,omitempty"`
	DrinkID  string    `json:"drink_id"`
	Text     string    `json:"comment"`
	PostedAt time.Time `json:"posted_at"`
	Seq      int64     `json:"-"`
	Profile  Profile   `json:"profile"`
}

// Profile is the author snapshot captured when a comment is posted. It is a
// copy of the author's profile at post time, never a live reference.
type Profile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// A User is the slice of the account entity this subsystem touches: the
// profile snapshot source and the tried/saved drink lists.
type User struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Picture string   `json:"picture"`
	Tried   []string `json:"tried"`
	Saved   []string `json:"saved"`
}
