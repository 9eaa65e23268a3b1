package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestQuoteSheet(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Transactions", "Transactions"},
		{"My Ledger", "'My Ledger'"},
		{"Bob's", "'Bob''s'"},
	}
	for _, tt := range tests {
		if got := quoteSheet(tt.name); got != tt.want {
			t.Errorf("quoteSheet(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNew_RequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), "  ", Credentials{JSON: "{}"}); err == nil {
		t.Fatal("expected error for empty spreadsheet ID")
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	ctx := context.Background()

	b, err := loadCredentials(ctx, Credentials{JSON: `{"type":"service_account"}`, File: "/nonexistent"})
	if err != nil {
		t.Fatalf("inline JSON: %v", err)
	}
	if string(b) != `{"type":"service_account"}` {
		t.Errorf("inline JSON not preferred, got %s", b)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err = loadCredentials(ctx, Credentials{File: path})
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if string(b) != `{"from":"file"}` {
		t.Errorf("unexpected file contents %s", b)
	}

	if _, err := loadCredentials(ctx, Credentials{}); err == nil {
		t.Error("expected error with no credentials")
	}
}

func TestAppendRows_Uninitialized(t *testing.T) {
	c := &Client{}
	if _, err := c.AppendRows(context.Background(), "Transactions", [][]any{{"x"}}); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestNewHTTPClient_RetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantCode  int
	}{
		{"server error is not retried", []int{http.StatusInternalServerError}, 1, http.StatusInternalServerError},
		{"unavailable is not retried", []int{http.StatusServiceUnavailable}, 1, http.StatusServiceUnavailable},
		{"rate limit is retried", []int{http.StatusTooManyRequests, http.StatusOK}, 2, http.StatusOK},
		{"success", []int{http.StatusOK}, 1, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				code := tt.statuses[len(tt.statuses)-1]
				if int(n) <= len(tt.statuses) {
					code = tt.statuses[n-1]
				}
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(code)
			}))
			defer srv.Close()

			client := newHTTPClient(srv.Client())
			resp, err := client.Post(srv.URL, "application/json", strings.NewReader(`{"values":[["2024-03-01"]]}`))
			if err != nil {
				t.Fatalf("Post() error = %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if got := atomic.LoadInt32(&calls); got != tt.wantCalls {
				t.Errorf("server calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestAppendRetryPolicy_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	retry, err := appendRetryPolicy(ctx, &http.Response{StatusCode: http.StatusTooManyRequests}, nil)
	if retry || err == nil {
		t.Errorf("appendRetryPolicy() = %v, %v; want no retry and the context error", retry, err)
	}
}
