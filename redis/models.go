package redis

import (
	"encoding/json"

	"github.com/drinkboard/drinkboard/drinks"
)

// A drink represents a cached drink hash. The recent-comment window is held
// as one JSON-encoded field so the cached entity round-trips whole.
type drink struct {
	ID            string  `redis:"id"`
	Price         float64 `redis:"price"`
	TotalComments int     `redis:"total_comments"`
	Comments      string  `redis:"comments"`
	Rate          float64 `redis:"rate"`
	Based         int     `redis:"based"`
	RatingsOne    int     `redis:"ratings_one"`
	RatingsTwo    int     `redis:"ratings_two"`
	RatingsThree  int     `redis:"ratings_three"`
	RatingsFour   int     `redis:"ratings_four"`
	RatingsFive   int     `redis:"ratings_five"`
}

func (d drink) Drink() (drinks.Drink, error) {
	var comments []drinks.Comment
	if d.Comments != "" {
		if err := json.Unmarshal([]byte(d.Comments), &comments); err != nil {
			return drinks.Drink{}, err
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
	}, nil
}

func drinkModel(d drinks.Drink) (drink, error) {
	comments, err := json.Marshal(d.Comments)
	if err != nil {
		return drink{}, err
	}
	return drink{
		ID:            d.ID,
		Price:         d.Price,
		TotalComments: d.TotalComments,
		Comments:      string(comments),
		Rate:          d.Rate.Rate,
		Based:         d.Rate.Based,
		RatingsOne:    d.Rate.Ratings.One,
		RatingsTwo:    d.Rate.Ratings.Two,
		RatingsThree:  d.Rate.Ratings.Three,
		RatingsFour:   d.Rate.Ratings.Four,
		RatingsFive:   d.Rate.Ratings.Five,
	}, nil
}
