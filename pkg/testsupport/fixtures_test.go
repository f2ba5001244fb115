package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFixture(t *testing.T) {
	// Create a temporary file for testing
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("test fixture content")

	if err := os.WriteFile(testFile, testContent, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	// Test successful load
	result := LoadFixture(t, testFile)
	if string(result) != string(testContent) {
		t.Errorf("expected %q, got %q", testContent, result)
	}
}

func TestLoadFixture_NonExistentFile(t *testing.T) {
	// This test verifies that LoadFixture fails appropriately for non-existent files
	// We can't easily test t.Fatalf being called, so we'll test the underlying behavior
	_, err := os.ReadFile("non-existent-file.txt")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	// Create a temporary JSON file for testing
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.json")
	testData := map[string]interface{}{
		"name":  "test",
		"value": 42,
		"items": []string{"a", "b", "c"},
	}

	jsonData, err := json.Marshal(testData)
	if err != nil {
		t.Fatalf("failed to marshal test data: %v", err)
	}

	if err := os.WriteFile(testFile, jsonData, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	// Test successful JSON load
	var result map[string]interface{}
	LoadFixtureJSON(t, testFile, &result)

	if result["name"] != "test" {
		t.Errorf("expected name=test, got %v", result["name"])
	}
	if result["value"] != float64(42) { // JSON unmarshals numbers as float64
		t.Errorf("expected value=42, got %v", result["value"])
	}
}

func TestFixturePath(t *testing.T) {
	result := FixturePath("test.json")
	expected := filepath.Join("testdata", "test.json")

	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

// Integration test demonstrating typical usage patterns
func TestFixtureWorkflow(t *testing.T) {
	tmpDir := t.TempDir()

	// Simulate testdata directory structure
	testdataDir := filepath.Join(tmpDir, "testdata")
	if err := os.MkdirAll(testdataDir, 0755); err != nil {
		t.Fatalf("failed to create testdata directory: %v", err)
	}

	// Create a fixture file
	fixtureFile := filepath.Join(testdataDir, "input.json")
	fixtureData := map[string]interface{}{
		"input": "test data",
		"count": 3,
	}

	jsonData, _ := json.MarshalIndent(fixtureData, "", "  ")
	if err := os.WriteFile(fixtureFile, jsonData, 0644); err != nil {
		t.Fatalf("failed to create fixture file: %v", err)
	}

	// Change to temp directory to test relative paths
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(tmpDir)

	// Test loading fixture with helper paths
	var loaded map[string]interface{}
	LoadFixtureJSON(t, FixturePath("input.json"), &loaded)

	if loaded["input"] != "test data" {
		t.Errorf("fixture not loaded correctly")
	}
}
