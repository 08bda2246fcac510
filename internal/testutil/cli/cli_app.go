package cli

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/app"
	handlacli "github.com/thenoetrevino/handla/internal/cli"
	"github.com/thenoetrevino/handla/internal/testutil"
)

// ExecuteCLICommand executes a CLI command with a test app instance.
// The app travels in the context so commands pick it up through
// GetCLIFromContext instead of opening the real database.
func ExecuteCLICommand(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	return ExecuteCLICommandWithContext(t, context.Background(), testApp, cmd, args)
}

// ExecuteCLICommandWithContext executes a CLI command with a specific context and test app
func ExecuteCLICommandWithContext(t *testing.T, ctx context.Context, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()

	if testApp == nil {
		t.Fatal("testApp cannot be nil - SetupCLITest must be called first")
	}

	cmd.SetArgs(args)
	ctxWithApp := handlacli.WithApp(ctx, testApp)

	// Disable usage output on error for cleaner test output
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var executeErr error
	output := testutil.CaptureOutput(t, func() {
		executeErr = cmd.ExecuteContext(ctxWithApp)
	})

	return output, executeErr
}
