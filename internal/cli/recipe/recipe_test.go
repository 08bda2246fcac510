package recipe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/handla/internal/app"
	"github.com/thenoetrevino/handla/internal/cli"
	"github.com/thenoetrevino/handla/internal/recipe"
	clitest "github.com/thenoetrevino/handla/internal/testutil/cli"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// newRecipeService serves a fixed tacos recipe for every /parse request.
func newRecipeService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/parse" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if strings.Contains(req.URL, "broken") {
			http.Error(w, "could not parse page", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"canonical_url": req.URL,
			"title":         "Tacos",
			"host":          "example.com",
			"ingredients":   []string{"500 g köttfärs", "1 påse tacokrydda", "2 tomater", "3 dl riven ost"},
			"instructions":  "1. Bryn färsen med tacokryddan.\n2. Servera i tacoskal.",
			"yields":        "4 servings",
			"total_time":    25,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupRecipeTest(t *testing.T) (*app.App, string) {
	t.Helper()
	srv := newRecipeService(t)
	fetcher, err := recipe.NewFetcher(srv.URL)
	require.NoError(t, err)

	_, a := clitest.SetupCLITest(t, app.WithFetcher(fetcher))
	return a, clitest.CreateTestList(t, a, "middag", "hemkop")
}

func addTacos(t *testing.T, a *app.App, listID string) string {
	t.Helper()
	output, err := clitest.ExecuteCLICommand(t, a, AddCmd(), []string{listID, "https://example.com/tacos", "--quiet"})
	require.NoError(t, err)
	return strings.TrimSpace(output)
}

// ============================================================================
// Add Tests
// ============================================================================

func TestAddRecipe(t *testing.T) {
	a, listID := setupRecipeTest(t)

	t.Run("fetched", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, AddCmd(), []string{listID, "example.com/tacos", "--json"})
		require.NoError(t, err)

		rec := clitest.ParseJSON(t, output)["recipe"].(map[string]any)
		assert.Equal(t, "Tacos", rec["title"])
		assert.Equal(t, "https://example.com/tacos", rec["url"])
		assert.Len(t, rec["ingredients"], 4)
		assert.EqualValues(t, 25, rec["total_time_minutes"])
	})

	t.Run("human lists numbered ingredients", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, AddCmd(), []string{listID, "https://example.com/tacos", "--title", "Fredagstacos"})
		require.NoError(t, err)
		assert.Contains(t, output, "Fredagstacos")
		assert.Contains(t, output, " 1. 500 g köttfärs")
		assert.Contains(t, output, "25 min")
	})

	t.Run("manual skips the service", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, AddCmd(), []string{listID, "https://example.com/broken", "--manual", "--json"})
		require.NoError(t, err)
		rec := clitest.ParseJSON(t, output)["recipe"].(map[string]any)
		assert.Empty(t, rec["ingredients"])
	})

	t.Run("upstream failure saves nothing", func(t *testing.T) {
		before, err := a.RecipeService.ListRecipes(context.Background(), listID)
		require.NoError(t, err)

		output, err := clitest.ExecuteCLICommand(t, a, AddCmd(), []string{listID, "https://example.com/broken", "--json"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitError, cli.ExitCode(err))
		assert.Contains(t, output, "RECIPE_FETCH_ERROR")

		after, err := a.RecipeService.ListRecipes(context.Background(), listID)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("private address rejected", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, a, AddCmd(), []string{listID, "http://192.168.1.10/recept", "--quiet"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})
}

func TestAddRecipe_NoService(t *testing.T) {
	_, a := clitest.SetupCLITest(t)
	listID := clitest.CreateTestList(t, a, "utan", "willys")

	output, err := clitest.ExecuteCLICommand(t, a, AddCmd(), []string{listID, "https://example.com/tacos", "--json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	assert.Contains(t, output, "RECIPE_SERVICE_UNAVAILABLE")
}

// ============================================================================
// List / Show / Delete Tests
// ============================================================================

func TestListAndShowRecipes(t *testing.T) {
	a, listID := setupRecipeTest(t)

	output, err := clitest.ExecuteCLICommand(t, a, ListCmd(), []string{listID})
	require.NoError(t, err)
	assert.Contains(t, output, "No recipes saved")

	first := addTacos(t, a, listID)
	second := addTacos(t, a, listID)

	output, err = clitest.ExecuteCLICommand(t, a, ListCmd(), []string{listID, "--quiet"})
	require.NoError(t, err)
	assert.Equal(t, []string{second, first}, strings.Fields(output), "newest first")

	output, err = clitest.ExecuteCLICommand(t, a, ShowCmd(), []string{listID, first, "--quiet"})
	require.NoError(t, err)
	assert.Equal(t, "500 g köttfärs", strings.Split(output, "\n")[0])

	output, err = clitest.ExecuteCLICommand(t, a, ShowCmd(), []string{listID, first})
	require.NoError(t, err)
	assert.Contains(t, output, "Instructions")
	assert.Contains(t, output, "Bryn färsen med tacokryddan.")
	assert.Less(t, strings.Index(output, "köttfärs"), strings.Index(output, "Bryn färsen"))

	_, err = clitest.ExecuteCLICommand(t, a, ShowCmd(), []string{"other", first, "--quiet"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
}

func TestEditRecipe(t *testing.T) {
	a, listID := setupRecipeTest(t)
	id := addTacos(t, a, listID)

	t.Run("changes only the given fields", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, EditCmd(), []string{listID, id,
			"--title", "Fredagstacos", "--time", "40",
			"--ingredient", "500 g nötfärs", "--ingredient", "1 påse tacokrydda, mild", "--json"})
		require.NoError(t, err)

		rec := clitest.ParseJSON(t, output)["recipe"].(map[string]any)
		assert.Equal(t, "Fredagstacos", rec["title"])
		assert.EqualValues(t, 40, rec["total_time_minutes"])
		assert.Equal(t, []any{"500 g nötfärs", "1 påse tacokrydda, mild"}, rec["ingredients"])
		assert.Equal(t, "https://example.com/tacos", rec["url"])
	})

	t.Run("clear ingredients", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, EditCmd(), []string{listID, id, "--clear-ingredients"})
		require.NoError(t, err)
		assert.Contains(t, output, "No ingredients")

		rec, err := a.RecipeService.GetRecipe(context.Background(), listID, id)
		require.NoError(t, err)
		assert.Empty(t, rec.Ingredients)
		assert.Equal(t, "Fredagstacos", rec.Title)
	})

	t.Run("no flags", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, a, EditCmd(), []string{listID, id, "--quiet"})
		require.Error(t, err)
	})

	t.Run("negative time", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, EditCmd(), []string{listID, id, "--time", "-1", "--json"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
		assert.Contains(t, output, "VALIDATION_ERROR")
	})

	t.Run("unknown recipe", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, a, EditCmd(), []string{listID, "missing", "--title", "x", "--quiet"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
	})
}

func TestDeleteRecipe(t *testing.T) {
	a, listID := setupRecipeTest(t)
	id := addTacos(t, a, listID)

	_, err := clitest.ExecuteCLICommand(t, a, DeleteCmd(), []string{listID, id, "--quiet"})
	require.NoError(t, err)

	recipes, err := a.RecipeService.ListRecipes(context.Background(), listID)
	require.NoError(t, err)
	assert.Empty(t, recipes)

	_, err = clitest.ExecuteCLICommand(t, a, DeleteCmd(), []string{listID, id, "--quiet"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
}

// ============================================================================
// Import Tests
// ============================================================================

func TestImportRecipe(t *testing.T) {
	a, listID := setupRecipeTest(t)
	id := addTacos(t, a, listID)

	t.Run("selected lines", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, ImportCmd(), []string{listID, id, "--lines", "1,3", "--json"})
		require.NoError(t, err)

		report := clitest.ParseJSON(t, output)["import"].(map[string]any)
		added := report["added"].([]any)
		require.Len(t, added, 2)
		assert.Equal(t, "500 g köttfärs", added[0].(map[string]any)["text"])
		assert.Equal(t, "protein", added[0].(map[string]any)["section_id"])
		assert.Equal(t, "frukt_gront", added[1].(map[string]any)["section_id"])
	})

	t.Run("everything reports duplicates", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, ImportCmd(), []string{listID, id})
		require.NoError(t, err)
		assert.Contains(t, output, "Added 4 items")
		assert.Contains(t, output, "2 already on the list")
	})

	t.Run("line out of range", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, a, ImportCmd(), []string{listID, id, "--lines", "9", "--quiet"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})

	t.Run("bad selection syntax", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, a, ImportCmd(), []string{listID, id, "--lines", "x", "--quiet"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})

	t.Run("manual recipe has no ingredients", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, a, AddCmd(), []string{listID, "https://example.com/x", "--manual", "--quiet"})
		require.NoError(t, err)

		_, err = clitest.ExecuteCLICommand(t, a, ImportCmd(), []string{listID, strings.TrimSpace(output), "--quiet"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitDataErr, cli.ExitCode(err))
	})
}
