package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/thenoetrevino/handla/internal/events"
	"github.com/thenoetrevino/handla/internal/models"
)

// RecipeRepo handles all recipe-related database operations.
type RecipeRepo struct {
	db  *sql.DB
	pub events.EventPublisher
}

const recipeColumns = `id, list_id, title, url, sort_order, total_time, ingredients,
	instructions, yields, image_url, host, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	var (
		rec         models.Recipe
		totalTime   sql.NullInt64
		ingredients string
	)
	if err := row.Scan(&rec.ID, &rec.ListID, &rec.Title, &rec.URL, &rec.SortOrder, &totalTime,
		&ingredients, &rec.Instructions, &rec.Yields, &rec.ImageURL, &rec.Host, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if totalTime.Valid {
		minutes := int(totalTime.Int64)
		rec.TotalTimeMinutes = &minutes
	}
	if err := json.Unmarshal([]byte(ingredients), &rec.Ingredients); err != nil {
		return nil, fmt.Errorf("decoding ingredients of recipe %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// CreateRecipe stores a recipe at the top of its list: it gets sort order 0
// and every existing recipe moves down one place. A missing id is generated.
func (r *RecipeRepo) CreateRecipe(ctx context.Context, rec *models.Recipe) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	ingredients := rec.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	encoded, err := json.Marshal(ingredients)
	if err != nil {
		return fmt.Errorf("encoding ingredients: %w", err)
	}

	var totalTime any
	if rec.TotalTimeMinutes != nil {
		totalTime = *rec.TotalTimeMinutes
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE recipes SET sort_order = sort_order + 1 WHERE list_id = ?`, rec.ListID); err != nil {
			return fmt.Errorf("shifting recipes: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipes (id, list_id, title, url, sort_order, total_time, ingredients,
				instructions, yields, image_url, host)
			 VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.ListID, rec.Title, rec.URL, totalTime, string(encoded),
			rec.Instructions, rec.Yields, rec.ImageURL, rec.Host)
		if err != nil {
			return fmt.Errorf("inserting recipe: %w", err)
		}
		return touchList(ctx, tx, rec.ListID)
	})
	if err != nil {
		return err
	}
	rec.SortOrder = 0
	sendEvent(r.pub, rec.ListID)
	return nil
}

// ListRecipes returns the recipes of a list, newest first.
func (r *RecipeRepo) ListRecipes(ctx context.Context, listID string) ([]*models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE list_id = ? ORDER BY sort_order, id`, listID)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []*models.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

// GetRecipe returns one recipe, or models.ErrNotFound.
func (r *RecipeRepo) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	rec, err := scanRecipe(r.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting recipe %s: %w", id, err)
	}
	return rec, nil
}

// UpdateRecipe overwrites the editable fields of a recipe. The list and the
// sort order stay as they are.
func (r *RecipeRepo) UpdateRecipe(ctx context.Context, rec *models.Recipe) error {
	ingredients := rec.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	encoded, err := json.Marshal(ingredients)
	if err != nil {
		return fmt.Errorf("encoding ingredients: %w", err)
	}

	var totalTime any
	if rec.TotalTimeMinutes != nil {
		totalTime = *rec.TotalTimeMinutes
	}

	var listID string
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT list_id FROM recipes WHERE id = ?`, rec.ID).Scan(&listID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("recipe %s: %w", rec.ID, models.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE recipes SET title = ?, url = ?, total_time = ?, ingredients = ?,
				instructions = ?, yields = ?, image_url = ?, host = ?
			 WHERE id = ?`,
			rec.Title, rec.URL, totalTime, string(encoded),
			rec.Instructions, rec.Yields, rec.ImageURL, rec.Host, rec.ID); err != nil {
			return fmt.Errorf("updating recipe: %w", err)
		}
		return touchList(ctx, tx, listID)
	})
	if err != nil {
		return err
	}
	sendEvent(r.pub, listID)
	return nil
}

// DeleteRecipe removes a recipe and closes the gap in the sort order.
func (r *RecipeRepo) DeleteRecipe(ctx context.Context, id string) error {
	var listID string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var sortOrder int
		err := tx.QueryRowContext(ctx,
			`SELECT list_id, sort_order FROM recipes WHERE id = ?`, id).Scan(&listID, &sortOrder)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("recipe %s: %w", id, models.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting recipe: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE recipes SET sort_order = sort_order - 1 WHERE list_id = ? AND sort_order > ?`,
			listID, sortOrder); err != nil {
			return fmt.Errorf("compacting recipe order: %w", err)
		}
		return touchList(ctx, tx, listID)
	})
	if err != nil {
		return err
	}
	sendEvent(r.pub, listID)
	return nil
}
