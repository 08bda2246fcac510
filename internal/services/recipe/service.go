// Package recipe saves recipe links on a list and imports their
// ingredients onto the board.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/database"
	"github.com/thenoetrevino/handla/internal/ingredient"
	"github.com/thenoetrevino/handla/internal/models"
	"github.com/thenoetrevino/handla/internal/recipe"
	"github.com/thenoetrevino/handla/internal/reconcile"
)

// Fetcher scrapes a recipe page. *recipe.Fetcher implements it.
type Fetcher interface {
	FetchIngredients(ctx context.Context, url string) (*recipe.Result, error)
}

// Service defines all recipe-related business operations
type Service interface {
	AddRecipe(ctx context.Context, listID string, req AddRecipeRequest) (*models.Recipe, error)
	ListRecipes(ctx context.Context, listID string) ([]*models.Recipe, error)
	GetRecipe(ctx context.Context, listID, recipeID string) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, listID, recipeID string, req UpdateRecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, listID, recipeID string) error
	ImportIngredients(ctx context.Context, listID, recipeID string, selected []int) (*ingredient.ImportReport, error)
}

// AddRecipeRequest describes a recipe link to save. Title overrides the
// scraped title. With Manual set the page is not fetched at all.
type AddRecipeRequest struct {
	URL    string
	Title  string
	Manual bool
}

// UpdateRecipeRequest holds the fields to change; nil fields are kept.
// A TotalTimeMinutes of 0 clears the time and an empty, non-nil
// Ingredients clears the lines.
type UpdateRecipeRequest struct {
	Title            *string
	URL              *string
	Yields           *string
	TotalTimeMinutes *int
	Ingredients      []string
}

func (r UpdateRecipeRequest) empty() bool {
	return r.Title == nil && r.URL == nil && r.Yields == nil && r.TotalTimeMinutes == nil && r.Ingredients == nil
}

// service implements Service interface
type service struct {
	repo       database.DataStore
	feed       reconcile.ChangeFeed
	fetcher    Fetcher
	classifier *ingredient.Classifier
}

// NewService creates a new recipe service. fetcher and feed may be nil.
func NewService(repo database.DataStore, feed reconcile.ChangeFeed, fetcher Fetcher) Service {
	return &service{
		repo:       repo,
		feed:       feed,
		fetcher:    fetcher,
		classifier: ingredient.Default(),
	}
}

// AddRecipe fetches the recipe page and saves it at the top of the list's
// recipes. A failed fetch saves nothing.
func (s *service) AddRecipe(ctx context.Context, listID string, req AddRecipeRequest) (*models.Recipe, error) {
	l, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}

	target, err := recipe.NormalizeURL(req.URL)
	if err != nil {
		return nil, err
	}

	rec := &models.Recipe{ListID: l.ID, URL: target, Title: strings.TrimSpace(req.Title)}
	if !req.Manual {
		if s.fetcher == nil {
			return nil, ErrFetcherUnavailable
		}
		res, err := s.fetcher.FetchIngredients(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch recipe: %w", err)
		}
		if rec.Title == "" {
			rec.Title = res.Title
		}
		rec.Ingredients = res.Ingredients
		rec.Instructions = res.Instructions
		rec.Yields = res.Yields
		rec.TotalTimeMinutes = res.TotalTimeMinutes
		rec.ImageURL = res.ImageURL
		rec.Host = res.Host
	}

	if err := s.repo.CreateRecipe(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	slog.Info("recipe saved", "list_id", l.ID, "recipe_id", rec.ID, "ingredients", len(rec.Ingredients))

	saved, err := s.repo.GetRecipe(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return saved, nil
}

// ListRecipes returns the list's recipes, newest first.
func (s *service) ListRecipes(ctx context.Context, listID string) ([]*models.Recipe, error) {
	l, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.repo.ListRecipes(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe loads a recipe that belongs to listID.
func (s *service) GetRecipe(ctx context.Context, listID, recipeID string) (*models.Recipe, error) {
	listID = strings.TrimSpace(listID)
	recipeID = strings.TrimSpace(recipeID)
	if listID == "" {
		return nil, ErrInvalidListID
	}
	if recipeID == "" {
		return nil, ErrInvalidRecipeID
	}

	rec, err := s.repo.GetRecipe(ctx, recipeID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if rec.ListID != listID {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}
	return rec, nil
}

// UpdateRecipe edits a saved recipe in place. The page is not fetched again.
func (s *service) UpdateRecipe(ctx context.Context, listID, recipeID string, req UpdateRecipeRequest) (*models.Recipe, error) {
	if req.empty() {
		return nil, ErrNoUpdates
	}
	if req.TotalTimeMinutes != nil && *req.TotalTimeMinutes < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTime, *req.TotalTimeMinutes)
	}

	rec, err := s.GetRecipe(ctx, listID, recipeID)
	if err != nil {
		return nil, err
	}

	if req.URL != nil {
		target, err := recipe.NormalizeURL(*req.URL)
		if err != nil {
			return nil, err
		}
		if target != rec.URL {
			if u, err := url.Parse(target); err == nil {
				rec.Host = strings.TrimPrefix(u.Hostname(), "www.")
			}
		}
		rec.URL = target
	}
	if req.Title != nil {
		rec.Title = strings.TrimSpace(*req.Title)
	}
	if req.Yields != nil {
		rec.Yields = strings.TrimSpace(*req.Yields)
	}
	if req.TotalTimeMinutes != nil {
		rec.TotalTimeMinutes = nil
		if minutes := *req.TotalTimeMinutes; minutes > 0 {
			rec.TotalTimeMinutes = &minutes
		}
	}
	if req.Ingredients != nil {
		rec.Ingredients = make([]string, 0, len(req.Ingredients))
		for _, line := range req.Ingredients {
			if line = strings.TrimSpace(line); line != "" {
				rec.Ingredients = append(rec.Ingredients, line)
			}
		}
	}

	if err := s.repo.UpdateRecipe(ctx, rec); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, rec.ID)
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	slog.Info("recipe updated", "list_id", rec.ListID, "recipe_id", rec.ID)

	saved, err := s.repo.GetRecipe(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return saved, nil
}

// DeleteRecipe removes a recipe. Items imported from it stay on the list.
func (s *service) DeleteRecipe(ctx context.Context, listID, recipeID string) error {
	rec, err := s.GetRecipe(ctx, listID, recipeID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRecipe(ctx, rec.ID); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// ImportIngredients classifies the selected ingredient lines of a recipe
// and adds them to the list in one board change. A nil selection imports
// every line.
func (s *service) ImportIngredients(ctx context.Context, listID, recipeID string, selected []int) (*ingredient.ImportReport, error) {
	rec, err := s.GetRecipe(ctx, listID, recipeID)
	if err != nil {
		return nil, err
	}
	if !rec.HasIngredients() {
		return nil, ErrNoIngredients
	}
	lines, err := pick(rec.Ingredients, selected)
	if err != nil {
		return nil, err
	}

	l, err := s.loadList(ctx, rec.ListID)
	if err != nil {
		return nil, err
	}

	d := reconcile.NewDriver(s.repo, s.feed, l.ID, board.StoreKey(l.Store))
	if err := d.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open list: %w", err)
	}
	defer func() {
		if closeErr := d.Close(); closeErr != nil {
			slog.Warn("closing list driver", "list_id", l.ID, "error", closeErr)
		}
	}()

	key := d.StoreKey()
	var report ingredient.ImportReport
	before := d.Board()
	after := d.Apply(func(b board.Board) board.Board {
		next, r := s.classifier.Import(b, key, lines)
		report = r
		return next
	})
	if len(report.Added) > 0 && len(after.Items) == len(before.Items) {
		return nil, ErrNotApplied
	}
	if err := d.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to save list: %w", err)
	}

	slog.Info("imported ingredients", "list_id", l.ID, "recipe_id", rec.ID,
		"added", len(report.Added), "duplicates", len(report.Duplicates), "skipped", len(report.Skipped))
	return &report, nil
}

func (s *service) loadList(ctx context.Context, listID string) (*models.List, error) {
	listID = strings.TrimSpace(listID)
	if listID == "" {
		return nil, ErrInvalidListID
	}
	l, err := s.repo.GetList(ctx, listID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	return l, nil
}

// pick returns the lines at the selected indexes, in selection order.
// Repeated indexes are imported once.
func pick(lines []string, selected []int) ([]string, error) {
	if selected == nil {
		return lines, nil
	}
	seen := make(map[int]struct{}, len(selected))
	out := make([]string, 0, len(selected))
	for _, i := range selected {
		if i < 0 || i >= len(lines) {
			return nil, fmt.Errorf("%w: %d (recipe has %d lines)", ErrInvalidSelection, i, len(lines))
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, lines[i])
	}
	return out, nil
}
