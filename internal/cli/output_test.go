package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type mockDataWithID struct {
	ID   string
	Name string
}

func (m mockDataWithID) GetID() string {
	return m.ID
}

type mockDataWithoutID struct {
	Name  string
	Value int
}

type mockStringer struct{}

func (mockStringer) String() string { return "rendered by String" }

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		outC <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = oldStdout
	return <-outC
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stderr = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		outC <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stderr = oldStderr
	return <-outC
}

// ============================================================================
// Success Method Tests
// ============================================================================

func TestOutputFormatter_Success_JSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		validate func(t *testing.T, result map[string]any)
	}{
		{
			name: "map data",
			data: map[string]any{"test": "value"},
			validate: func(t *testing.T, result map[string]any) {
				dataMap := result["data"].(map[string]any)
				if dataMap["test"] != "value" {
					t.Errorf("Expected data.test to be 'value', got %v", dataMap["test"])
				}
			},
		},
		{
			name: "struct with ID",
			data: mockDataWithID{ID: "abc", Name: "Test"},
			validate: func(t *testing.T, result map[string]any) {
				dataMap := result["data"].(map[string]any)
				if dataMap["Name"] != "Test" {
					t.Errorf("Expected data.Name to be 'Test', got %v", dataMap["Name"])
				}
			},
		},
		{
			name: "nil data",
			data: nil,
			validate: func(t *testing.T, result map[string]any) {
				if result["data"] != nil {
					t.Errorf("Expected data to be nil, got %v", result["data"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &OutputFormatter{JSON: true}
			var err error
			output := captureStdout(t, func() { err = formatter.Success(tt.data) })
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			var result map[string]any
			if err := json.Unmarshal([]byte(output), &result); err != nil {
				t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, output)
			}
			if result["success"] != true {
				t.Error("Expected success to be true")
			}
			tt.validate(t, result)
		})
	}
}

func TestOutputFormatter_Success_QuietPrintsID(t *testing.T) {
	formatter := &OutputFormatter{Quiet: true}
	output := captureStdout(t, func() {
		_ = formatter.Success(mockDataWithID{ID: "list-1", Name: "Test"})
	})
	if strings.TrimSpace(output) != "list-1" {
		t.Errorf("Expected 'list-1', got %q", output)
	}
}

func TestOutputFormatter_Success_QuietWithoutIDFallsThrough(t *testing.T) {
	formatter := &OutputFormatter{Quiet: true}
	output := captureStdout(t, func() {
		_ = formatter.Success(mockDataWithoutID{Name: "Test", Value: 42})
	})
	if !strings.Contains(output, "Test") {
		t.Errorf("Expected pretty printed struct, got %q", output)
	}
}

func TestOutputFormatter_Success_HumanUsesStringer(t *testing.T) {
	formatter := &OutputFormatter{}
	output := captureStdout(t, func() { _ = formatter.Success(mockStringer{}) })
	if strings.TrimSpace(output) != "rendered by String" {
		t.Errorf("Expected String() output, got %q", output)
	}
}

// ============================================================================
// Emit Tests
// ============================================================================

func TestOutputFormatter_Emit(t *testing.T) {
	data := map[string]string{"id": "x"}
	ids := []string{"a", "b"}

	t.Run("quiet prints ids", func(t *testing.T) {
		f := &OutputFormatter{Quiet: true}
		output := captureStdout(t, func() {
			_ = f.Emit("lists", data, ids, func() { t.Error("human output in quiet mode") })
		})
		if output != "a\nb\n" {
			t.Errorf("Expected ids one per line, got %q", output)
		}
	})

	t.Run("json uses key", func(t *testing.T) {
		f := &OutputFormatter{JSON: true}
		output := captureStdout(t, func() {
			_ = f.Emit("lists", data, ids, func() { t.Error("human output in json mode") })
		})
		var result map[string]any
		if err := json.Unmarshal([]byte(output), &result); err != nil {
			t.Fatalf("Failed to parse JSON: %v", err)
		}
		if _, ok := result["lists"]; !ok {
			t.Errorf("Expected 'lists' key, got %v", result)
		}
	})

	t.Run("human calls func", func(t *testing.T) {
		f := &OutputFormatter{}
		called := false
		_ = captureStdout(t, func() {
			_ = f.Emit("lists", data, ids, func() { called = true })
		})
		if !called {
			t.Error("Expected human func to be called")
		}
	})
}

// ============================================================================
// Error Method Tests
// ============================================================================

func TestOutputFormatter_ErrorWithSuggestion_JSON(t *testing.T) {
	f := &OutputFormatter{JSON: true}
	output := captureStdout(t, func() {
		_ = f.ErrorWithSuggestion("LIST_NOT_FOUND", "list not found", "try ls")
	})

	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if result["success"] != false {
		t.Error("Expected success to be false")
	}
	errData := result["error"].(map[string]any)
	if errData["code"] != "LIST_NOT_FOUND" || errData["suggestion"] != "try ls" {
		t.Errorf("Unexpected error payload: %v", errData)
	}
}

func TestOutputFormatter_Error_HumanGoesToStderr(t *testing.T) {
	f := &OutputFormatter{}
	var stdout string
	stderr := captureStderr(t, func() {
		stdout = captureStdout(t, func() {
			_ = f.ErrorWithSuggestion("X", "broken", "fix it")
		})
	})
	if stdout != "" {
		t.Errorf("Expected nothing on stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "broken") || !strings.Contains(stderr, "fix it") {
		t.Errorf("Expected message and suggestion on stderr, got %q", stderr)
	}
}

// ============================================================================
// Flag Tests
// ============================================================================

func TestFormatterFor(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	AddOutputFlags(cmd)
	if err := cmd.Flags().Parse([]string{"--json"}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	f := FormatterFor(cmd)
	if !f.JSON || f.Quiet {
		t.Errorf("Expected JSON only, got %+v", f)
	}
}
