package cli

import (
	"testing"

	"github.com/thenoetrevino/handla/internal/app"
	"github.com/thenoetrevino/handla/internal/database"
	"github.com/thenoetrevino/handla/internal/testutil"
)

// SetupCLITest creates an in-memory DB and returns the repository and an
// App over it. This function is only for CLI tests and is isolated in a
// separate package to avoid import cycles when service tests import testutil.
func SetupCLITest(t *testing.T, opts ...app.Option) (*database.Repository, *app.App) {
	t.Helper()
	repo, hub := testutil.SetupTestRepo(t)

	appInstance := app.New(repo, append([]app.Option{app.WithEventBus(hub)}, opts...)...)
	t.Cleanup(func() { _ = appInstance.Close() })

	return repo, appInstance
}

// CreateTestList wraps testutil.CreateTestList for CLI tests
func CreateTestList(t *testing.T, a *app.App, id, store string) string {
	t.Helper()
	return testutil.CreateTestList(t, a.ListService, id, store)
}

// CreateTestItem wraps testutil.CreateTestItem for CLI tests
func CreateTestItem(t *testing.T, a *app.App, listID, sectionID, text string) string {
	t.Helper()
	return testutil.CreateTestItem(t, a.ListService, listID, sectionID, text)
}
