package recipe

import "errors"

// Recipe-related errors
var (
	ErrInvalidListID      = errors.New("invalid list ID")
	ErrInvalidRecipeID    = errors.New("invalid recipe ID")
	ErrListNotFound       = errors.New("list not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrNoIngredients      = errors.New("recipe has no ingredients")
	ErrInvalidSelection   = errors.New("ingredient selection out of range")
	ErrFetcherUnavailable = errors.New("recipe service is not configured")
	ErrNotApplied         = errors.New("import was rejected")
	ErrNoUpdates          = errors.New("nothing to update")
	ErrInvalidTime        = errors.New("total time must be 0 or more minutes")
)
