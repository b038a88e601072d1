package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// newTestServer builds one shared server: the prometheus collectors
// register globally and must only be registered once per process.
var (
	testServerOnce sync.Once
	testServer     *APIServer
)

func newTestServer() *APIServer {
	testServerOnce.Do(func() {
		testServer = NewAPIServer(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})
	return testServer
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	var resp map[string]any
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not valid JSON: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestHandleProveHonesty_Dominant(t *testing.T) {
	rec, resp := postJSON(t, newTestServer().HandleProveHonesty, "/api/v1/honesty-proof",
		`{"stake":1000,"detection_probability":0.8,"reputation_value":200,"max_violation_gain":500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if resp["is_dominant_strategy"] != true {
		t.Error("expected dominant strategy")
	}
	if resp["margin"] != 500.0 {
		t.Errorf("expected margin 500, got %v", resp["margin"])
	}
}

// TestHandleProveHonesty_UnboundedStake covers the undetectable case:
// the required stake is unbounded and must serialize as null rather
// than abort the encoder mid-response.
func TestHandleProveHonesty_UnboundedStake(t *testing.T) {
	rec, resp := postJSON(t, newTestServer().HandleProveHonesty, "/api/v1/honesty-proof",
		`{"stake":100,"detection_probability":0,"max_violation_gain":500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	v, ok := resp["required_stake"]
	if !ok {
		t.Fatal("response missing required_stake")
	}
	if v != nil {
		t.Errorf("expected null required_stake for undetectable violations, got %v", v)
	}
	if resp["derivation"] == "" {
		t.Error("expected non-empty derivation")
	}
}

func TestHandleProveHonesty_BadInput(t *testing.T) {
	rec, _ := postJSON(t, newTestServer().HandleProveHonesty, "/api/v1/honesty-proof",
		`{"stake":-1,"detection_probability":0.5}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative stake, got %d", rec.Code)
	}
}

// TestHandleESS_FavorableMutant covers the other unbounded field: a
// favorable mutant never goes extinct, so the expected extinction
// generations are null in the response.
func TestHandleESS_FavorableMutant(t *testing.T) {
	rec, resp := postJSON(t, newTestServer().HandleESS, "/api/v1/ess",
		`{"population_size":100,"mutant_fraction":0.1,"payoffs":[[3,0],[5,1]]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if resp["is_ess"] != false {
		t.Error("expected defection-dominant payoffs to reject ESS")
	}
	v, ok := resp["expected_extinction_generations"]
	if !ok {
		t.Fatal("response missing expected_extinction_generations")
	}
	if v != nil {
		t.Errorf("expected null extinction estimate for a favorable mutant, got %v", v)
	}
}

func TestHandleESS_StableStrategy(t *testing.T) {
	rec, resp := postJSON(t, newTestServer().HandleESS, "/api/v1/ess",
		`{"population_size":100,"mutant_fraction":0.1,"payoffs":[[5,1],[3,2]]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if resp["is_ess"] != true {
		t.Error("expected honest strategy to be an ESS")
	}
	if _, isNumber := resp["expected_extinction_generations"].(float64); !isNumber {
		t.Errorf("expected finite extinction estimate, got %v",
			resp["expected_extinction_generations"])
	}
}
