// Package postgres provides durable storage in PostgreSQL for drinks, users
// and the comment ledger.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/drinkboard/drinkboard/drinks"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and pings it to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// ListDrinks returns all drinks sorted ascending by id, skipping the given
// ids.
func (pg *Postgres) ListDrinks(ctx context.Context, excludeIDs ...string) ([]drinks.Drink, error) {
	var ds []drink
	q := pg.bun.NewSelect().
		Model(&ds).
		Order("id ASC")

	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(excludeIDs))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]drinks.Drink, len(ds))
	for i, d := range ds {
		out[i] = d.Drink()
	}

	return out, nil
}

// GetDrink returns the drink with the given id.
func (pg *Postgres) GetDrink(ctx context.Context, id string) (drinks.Drink, error) {
	var d drink
	err := pg.bun.NewSelect().Model(&d).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return drinks.Drink{}, drinks.ErrDrinkNotFound
	}
	if err != nil {
		return drinks.Drink{}, fmt.Errorf("scan: %w", err)
	}
	return d.Drink(), nil
}

// SaveDrink writes the drink back in a single row update, so the rating
// distribution, the comment window and the comment counter land together.
func (pg *Postgres) SaveDrink(ctx context.Context, d drinks.Drink) error {
	m := drinkModel(d)
	res, err := pg.bun.NewUpdate().Model(&m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return drinks.ErrDrinkNotFound
	}
	return nil
}

// GetUser returns the user with the given id.
func (pg *Postgres) GetUser(ctx context.Context, id string) (drinks.User, error) {
	var u user
	err := pg.bun.NewSelect().Model(&u).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return drinks.User{}, drinks.ErrUserNotFound
	}
	if err != nil {
		return drinks.User{}, fmt.Errorf("scan: %w", err)
	}
	return u.User(), nil
}

// SaveUser writes the user's tried and saved lists back.
func (pg *Postgres) SaveUser(ctx context.Context, du drinks.User) error {
	m := user{
		ID:      du.ID,
		Email:   du.Email,
		Name:    du.Name,
		Picture: du.Picture,
		Tried:   du.Tried,
		Saved:   du.Saved,
	}
	res, err := pg.bun.NewUpdate().Model(&m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return drinks.ErrUserNotFound
	}
	return nil
}

// InsertComment appends a comment to the ledger. The returned comment holds
// auto generated fields, such as the record id.
func (pg *Postgres) InsertComment(ctx context.Context, c drinks.Comment) (drinks.Comment, error) {
	m := &comment{
		DrinkID:        c.DrinkID,
		CommentText:    c.Text,
		PostedAt:       c.PostedAt,
		Seq:            c.Seq,
		ProfileEmail:   c.Profile.Email,
		ProfileName:    c.Profile.Name,
		ProfilePicture: c.Profile.Picture,
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return drinks.Comment{}, fmt.Errorf("insert: %w", err)
	}
	return m.Comment(), nil
}

// ListCommentsBefore returns up to limit ledger records for the drink posted
// strictly before the given time, newest first with the per-drink sequence
// as tie-break.
func (pg *Postgres) ListCommentsBefore(ctx context.Context, drinkID string, before time.Time, limit int) ([]drinks.Comment, error) {
	var cs []comment
	err := pg.bun.NewSelect().
		Model(&cs).
		Where("drink_id = ?", drinkID).
		Where("posted_at < ?", before).
		Order("posted_at DESC", "seq DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]drinks.Comment, len(cs))
	for i, c := range cs {
		out[i] = c.Comment()
	}
	return out, nil
}
