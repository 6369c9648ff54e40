package postgres

import (
	"time"

	"github.com/drinkboard/drinkboard/drinks"
)

// A drink represents a drink row. The recent-comment window is embedded as
// a JSONB column, so the distribution, the window and the comment counter
// persist in one row write.
type drink struct {
	ID            string     `bun:",pk"`
	Price         float64    `bun:",notnull,default:0"`
	TotalComments int        `bun:"total_comments,notnull,default:0"`
	Comments      []snapshot `bun:"comments,type:jsonb"`
	Rate          float64    `bun:"rate,notnull,default:0"`
	Based         int        `bun:"based,notnull,default:0"`
	RatingsOne    int        `bun:"ratings_one,notnull,default:0"`
	RatingsTwo    int        `bun:"ratings_two,notnull,default:0"`
	RatingsThree  int        `bun:"ratings_three,notnull,default:0"`
	RatingsFour   int        `bun:"ratings_four,notnull,default:0"`
	RatingsFive   int        `bun:"ratings_five,notnull,default:0"`
}

// A snapshot is one denormalized comment inside the drink's JSONB window.
type snapshot struct {
	ID       string    `json:"id"`
	Text     string    `json:"comment"`
	PostedAt time.Time `json:"posted_at"`
	Seq      int64     `json:"seq"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Picture  string    `json:"picture"`
}

// A comment represents a ledger row. Rows are immutable once inserted and
// totally ordered per drink by (posted_at, seq).
type comment struct {
	ID             string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	DrinkID        string    `bun:",notnull"`
	CommentText    string    `bun:"comment_text,notnull"`
	PostedAt       time.Time `bun:",nullzero,default:now()"`
	Seq            int64     `bun:",notnull"`
	ProfileEmail   string    `bun:",notnull"`
	ProfileName    string
	ProfilePicture string
}

// A user represents a user row. Tried is an append-only log, saved a set.
type user struct {
	ID      string   `bun:",pk"`
	Email   string   `bun:",notnull"`
	Name    string
	Picture string
	Tried   []string `bun:"tried,array"`
	Saved   []string `bun:"saved,array"`
}

func (d drink) Drink() drinks.Drink {
	comments := make([]drinks.Comment, len(d.Comments))
	for i, s := range d.Comments {
		comments[i] = drinks.Comment{
			ID:       s.ID,
			DrinkID:  d.ID,
			Text:     s.Text,
			PostedAt: s.PostedAt,
			Seq:      s.Seq,
			Profile: drinks.Profile{
				Email:   s.Email,
				Name:    s.Name,
				Picture: s.Picture,
			},
		}
	}
	return drinks.Drink{
		ID:            d.ID,
		Price:         d.Price,
		TotalComments: d.TotalComments,
		Comments:      comments,
		Rate: drinks.Rating{
			Rate:  d.Rate,
			Based: d.Based,
			Ratings: drinks.Buckets{
				One:   d.RatingsOne,
				Two:   d.RatingsTwo,
				Three: d.RatingsThree,
				Four:  d.RatingsFour,
				Five:  d.RatingsFive,
			},
		},
	}
}

func drinkModel(d drinks.Drink) drink {
	snapshots := make([]snapshot, len(d.Comments))
	for i, c := range d.Comments {
		snapshots[i] = snapshot{
			ID:       c.ID,
			Text:     c.Text,
			PostedAt: c.PostedAt,
			Seq:      c.Seq,
			Email:    c.Profile.Email,
			Name:     c.Profile.Name,
			Picture:  c.Profile.Picture,
		}
	}
	return drink{
		ID:            d.ID,
		Price:         d.Price,
		TotalComments: d.TotalComments,
		Comments:      snapshots,
		Rate:          d.Rate.Rate,
		Based:         d.Rate.Based,
		RatingsOne:    d.Rate.Ratings.One,
		RatingsTwo:    d.Rate.Ratings.Two,
		RatingsThree:  d.Rate.Ratings.Three,
		RatingsFour:   d.Rate.Ratings.Four,
		RatingsFive:   d.Rate.Ratings.Five,
	}
}

func (c comment) Comment() drinks.Comment {
	return drinks.Comment{
		ID:       c.ID,
		DrinkID:  c.DrinkID,
		Text:     c.CommentText,
		PostedAt: c.PostedAt,
		Seq:      c.Seq,
		Profile: drinks.Profile{
			Email:   c.ProfileEmail,
			Name:    c.ProfileName,
			Picture: c.ProfilePicture,
		},
	}
}

func (u user) User() drinks.User {
	return drinks.User{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
		Tried:   u.Tried,
		Saved:   u.Saved,
	}
}
