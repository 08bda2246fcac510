package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
}

// IDGetter is implemented by results that have an id to print in quiet mode.
type IDGetter interface {
	GetID() string
}

// AddOutputFlags registers --json and --quiet on cmd.
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")
}

// FormatterFor builds the formatter selected by cmd's output flags.
func FormatterFor(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{JSON: jsonOutput, Quiet: quietMode}
}

// Success outputs successful operation result
func (f *OutputFormatter) Success(data any) error {
	if f.Quiet {
		if idGetter, ok := data.(IDGetter); ok {
			fmt.Println(idGetter.GetID())
			return nil
		}
	}

	if f.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	// Human-readable format
	return f.prettyPrint(data)
}

// Emit writes data under key in JSON mode, one id per line in quiet mode
// and calls human otherwise.
func (f *OutputFormatter) Emit(key string, data any, ids []string, human func()) error {
	switch {
	case f.Quiet:
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	case f.JSON:
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"success": true,
			key:       data,
		})
	default:
		human()
		return nil
	}
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	// Human-readable error
	fmt.Fprintf(os.Stderr, "❌ Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "💡 Suggestion: %s\n", suggestion)
	}
	return nil
}

// prettyPrint formats data for human-readable output
func (f *OutputFormatter) prettyPrint(data any) error {
	if s, ok := data.(fmt.Stringer); ok {
		fmt.Println(s.String())
		return nil
	}
	fmt.Printf("%+v\n", data)
	return nil
}
