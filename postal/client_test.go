package postal

import (
	"context"
	"os"
	"testing"
)

// Client construction runs data acquisition and native setup, so these
// tests are opt-in like the native tests in internal/ffi.
func requireNative(t *testing.T) *Client {
	t.Helper()
	if os.Getenv("POSTALKIT_NATIVE_TESTS") == "" {
		t.Skip("set POSTALKIT_NATIVE_TESTS=1 to run native library tests")
	}
	client, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestClientParse(t *testing.T) {
	client := requireNative(t)

	parsed, err := client.Parse("123 Main St, New York, NY 10001")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.HouseNumber != "123" {
		t.Errorf("HouseNumber = %q, want 123", parsed.HouseNumber)
	}
	if parsed.City != "new york" {
		t.Errorf("City = %q, want new york", parsed.City)
	}
}

func TestClientNormalizeEmptyResultIsNotError(t *testing.T) {
	client := requireNative(t)

	normalized, err := client.Normalize("")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	_ = normalized.IsEmpty()
}

func TestClientProfiling(t *testing.T) {
	if os.Getenv("POSTALKIT_NATIVE_TESTS") == "" {
		t.Skip("set POSTALKIT_NATIVE_TESTS=1 to run native library tests")
	}
	client, err := NewWithConfig(context.Background(), &Config{EnableProfiling: true})
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}

	if _, err := client.Parse("10 Downing Street, London"); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Normalize("10 Downing St"); err != nil {
		t.Fatal(err)
	}

	summary := client.ProfileSummary()
	if summary.TotalOperations != 2 {
		t.Errorf("TotalOperations = %d, want 2", summary.TotalOperations)
	}
}

func TestClientRejectsBadLogLevel(t *testing.T) {
	_, err := NewWithConfig(context.Background(), &Config{LogLevel: "chatty"})
	if err == nil {
		t.Error("invalid log level should fail client construction")
	}
}

func TestParsedAddressBatchOrdering(t *testing.T) {
	client := requireNative(t)

	addresses := []string{
		"123 Main St, New York, NY",
		"456 Oak Ave, Portland, OR",
		"789 Pine Rd, Austin, TX",
	}
	results, err := client.Parser().ParseBatchParallel(addresses, 2)
	if err != nil {
		t.Fatalf("ParseBatchParallel: %v", err)
	}
	if len(results) != len(addresses) {
		t.Fatalf("result count = %d, want %d", len(results), len(addresses))
	}
	if results[0].HouseNumber != "123" || results[1].HouseNumber != "456" || results[2].HouseNumber != "789" {
		t.Error("batch results are not in input order")
	}
}
