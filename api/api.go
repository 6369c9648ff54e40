// Package api provides the REST surface of the drink rating backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/drinkboard/drinkboard/api/validator"
	"github.com/drinkboard/drinkboard/drinks"
)

// A DrinkService applies rating submissions and serves drink and comment
// reads.
type DrinkService interface {
	ListDrinks(ctx context.Context) ([]drinks.Drink, error)
	Rate(ctx context.Context, sub drinks.Submission) (drinks.Drink, error)
	Comments(ctx context.Context, drinkID string, before time.Time, limit int) ([]drinks.Comment, error)
	SaveDrink(ctx context.Context, userID, drinkID string, saved bool) (drinks.User, error)
}

// API provides the REST endpoints for the application.
type API struct {
	Logger *slog.Logger
	Drinks DrinkService
	Val    *validator.Validator

	once sync.Once
	mux  *http.ServeMux
}

// pageSize defines the default number of comments returned per page.
var pageSize = 10

func (a *API) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /drinks", a.listDrinks)
	mux.HandleFunc("POST /drinks/rate", a.rateDrink)
	mux.HandleFunc("POST /drinks/save", a.saveDrink)
	mux.HandleFunc("GET /comments/{drinkID}/{before}", a.listComments)

	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.mux.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	a.Logger.Error("Error", "error", err.Error())
	a.respond(w, status, response{Error: msg})
}

func (a *API) validateBody(w http.ResponseWriter, s interface{}) bool {
	errs := a.Val.ValidateStruct(s)
	type response struct {
		Errors []validator.ValidationError `json:"errors"`
	}

	if len(errs) > 0 {
		a.respond(w, http.StatusBadRequest, &response{
			Errors: errs,
		})
		return false
	}
	return true
}

func (a *API) listDrinks(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Drinks []drinks.Drink `json:"drinks"`
	}

	all, err := a.Drinks.ListDrinks(r.Context())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list drinks")
		return
	}
	a.Logger.Info("Listed drinks", "count", len(all))

	if all == nil {
		all = []drinks.Drink{}
	}
	a.respond(w, http.StatusOK, response{Drinks: all})
}

func (a *API) rateDrink(w http.ResponseWriter, r *http.Request) {
	type request struct {
		ID      string `json:"id" validate:"required"`
		UserID  string `json:"user_id" validate:"required"`
		Rate    int    `json:"rate" validate:"required"`
		Comment string `json:"comment"`
	}

	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	if err := r.Body.Close(); err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not close request body")
		return
	}

	drink, err := a.Drinks.Rate(r.Context(), drinks.Submission{
		DrinkID: body.ID,
		UserID:  body.UserID,
		Score:   body.Rate,
		Comment: body.Comment,
	})
	if err != nil {
		var partial *drinks.PartialCommitError
		switch {
		case errors.Is(err, drinks.ErrDrinkNotFound):
			a.respondError(w, http.StatusNotFound, err, "Could not find drink with id '"+body.ID+"'")
		case errors.Is(err, drinks.ErrUserNotFound):
			a.respondError(w, http.StatusNotFound, err, "Could not find user with id '"+body.UserID+"'")
		case errors.Is(err, drinks.ErrInvalidScore):
			a.respondError(w, http.StatusBadRequest, err, "Rating must be between 1 and 5")
		case errors.As(err, &partial):
			a.respondError(w, http.StatusBadGateway, err, partial.Error())
		default:
			a.respondError(w, http.StatusInternalServerError, err, "Could not rate drink")
		}
		return
	}

	a.respond(w, http.StatusOK, drink)
}

func (a *API) saveDrink(w http.ResponseWriter, r *http.Request) {
	type request struct {
		ID      string `json:"id" validate:"required"`
		UserID  string `json:"user_id" validate:"required"`
		IsSaved bool   `json:"is_saved"`
	}

	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	user, err := a.Drinks.SaveDrink(r.Context(), body.UserID, body.ID, body.IsSaved)
	if err != nil {
		if errors.Is(err, drinks.ErrUserNotFound) {
			a.respondError(w, http.StatusNotFound, err, "Could not find user with id '"+body.UserID+"'")
			return
		}
		a.respondError(w, http.StatusInternalServerError, err, "Could not save drink")
		return
	}

	a.respond(w, http.StatusOK, user)
}

func (a *API) listComments(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Comments []drinks.Comment `json:"comments"`
	}

	drinkID := r.PathValue("drinkID")
	before, err := time.Parse(time.RFC3339Nano, r.PathValue("before"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not parse 'before' timestamp")
		return
	}

	comments, err := a.Drinks.Comments(r.Context(), drinkID, before, pageSize)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list comments")
		return
	}
	a.Logger.Info("Listed comments", "drink_id", drinkID, "count", len(comments))

	if comments == nil {
		comments = []drinks.Comment{}
	}
	a.respond(w, http.StatusOK, response{Comments: comments})
}
