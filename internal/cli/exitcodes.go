package cli

import (
	"errors"

	"github.com/thenoetrevino/handla/internal/config"
	"github.com/thenoetrevino/handla/internal/recipe"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
	recipeservice "github.com/thenoetrevino/handla/internal/services/recipe"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Database errors, recipe service failures, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing arguments, invalid flag combinations, or a feature
	// that needs configuration first.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: List not found, item not found, section not found, recipe not found.
	ExitNotFound = 3

	// ExitDataErr indicates the data conflicts with what is stored.
	// Use for: Duplicate items, recipes without ingredients.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Unknown stores, empty item text, blocked recipe URLs,
	// ambiguous item references.
	ExitValidation = 5
)

// ExitCodeError carries the exit code for an error that has already been
// reported to the user.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned from a command to a process exit code.
// Errors that were never reported (cobra argument errors) are usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// Reported tells whether err was already written by a formatter.
func Reported(err error) bool {
	var exitErr *ExitCodeError
	return errors.As(err, &exitErr)
}

// Failure describes how an error is presented.
type Failure struct {
	Code       string
	Exit       int
	Suggestion string
}

// Describe classifies a service error.
func Describe(err error) Failure {
	switch {
	case errors.Is(err, listservice.ErrListNotFound), errors.Is(err, recipeservice.ErrListNotFound):
		return Failure{"LIST_NOT_FOUND", ExitNotFound, "Use 'handla list ls' to see available lists"}
	case errors.Is(err, listservice.ErrItemNotFound):
		return Failure{"ITEM_NOT_FOUND", ExitNotFound, "Use 'handla list show <list>' to see item ids"}
	case errors.Is(err, listservice.ErrSectionNotFound):
		return Failure{"SECTION_NOT_FOUND", ExitNotFound, "Use 'handla list show <list>' to see section ids"}
	case errors.Is(err, recipeservice.ErrRecipeNotFound):
		return Failure{"RECIPE_NOT_FOUND", ExitNotFound, "Use 'handla recipe list <list>' to see saved recipes"}

	case errors.Is(err, listservice.ErrDuplicateItem):
		return Failure{"DUPLICATE_ITEM", ExitDataErr, "Pass --allow-duplicate to add it anyway"}
	case errors.Is(err, recipeservice.ErrNoIngredients):
		return Failure{"NO_INGREDIENTS", ExitDataErr, ""}

	case errors.Is(err, listservice.ErrAmbiguousItem):
		return Failure{"AMBIGUOUS_ITEM", ExitValidation, "Use a longer item id prefix"}
	case errors.Is(err, listservice.ErrInvalidStore):
		return Failure{"INVALID_STORE", ExitValidation, "Known stores: willys, hemkop"}
	case errors.Is(err, listservice.ErrInvalidListID),
		errors.Is(err, recipeservice.ErrInvalidListID),
		errors.Is(err, recipeservice.ErrInvalidRecipeID),
		errors.Is(err, listservice.ErrEmptyText),
		errors.Is(err, listservice.ErrInvalidItemRef),
		errors.Is(err, recipeservice.ErrInvalidSelection),
		errors.Is(err, recipeservice.ErrNoUpdates),
		errors.Is(err, recipeservice.ErrInvalidTime),
		recipe.IsKind(err, recipe.KindInvalidURL):
		return Failure{"VALIDATION_ERROR", ExitValidation, ""}

	case errors.Is(err, recipeservice.ErrFetcherUnavailable), errors.Is(err, recipe.ErrNotConfigured):
		return Failure{"RECIPE_SERVICE_UNAVAILABLE", ExitUsage, "Set RECIPE_SERVICE_URL or pass --manual"}
	case errors.Is(err, config.ErrInvalidConfig):
		return Failure{"CONFIG_ERROR", ExitUsage, ""}
	}

	var fe *recipe.FetchError
	if errors.As(err, &fe) {
		return Failure{"RECIPE_FETCH_ERROR", ExitError, ""}
	}
	return Failure{"ERROR", ExitError, ""}
}

// Fail reports err through f and returns it wrapped with its exit code.
func Fail(f *OutputFormatter, err error) error {
	d := Describe(err)
	return FailWith(f, d, err)
}

// FailWith reports err with an explicit classification.
func FailWith(f *OutputFormatter, d Failure, err error) error {
	if fmtErr := f.ErrorWithSuggestion(d.Code, err.Error(), d.Suggestion); fmtErr != nil {
		return &ExitCodeError{Code: d.Exit, Err: errors.Join(err, fmtErr)}
	}
	return &ExitCodeError{Code: d.Exit, Err: err}
}
