package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, backendURL, gotenbergURL string) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("SERVICE_TOKEN", "svc-token")
	t.Setenv("BACKEND_URL", backendURL)
	t.Setenv("GOTENBERG_URL", gotenbergURL)
}

func run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPingReportsEachDependency(t *testing.T) {
	var auth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"total":0}`))
	}))
	t.Cleanup(api.Close)
	pdf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(pdf.Close)
	setEnv(t, api.URL, pdf.URL)

	out, err := run("ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 checks failed")
	assert.Contains(t, out, "backend  ok")
	assert.Contains(t, out, "pdf      FAIL")
	assert.Equal(t, "Bearer svc-token", auth)
}

func TestPingBackendRejection(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid token"}`))
	}))
	t.Cleanup(api.Close)
	pdf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(pdf.Close)
	setEnv(t, api.URL, pdf.URL)

	out, err := run("ping")
	require.Error(t, err)
	assert.Contains(t, out, "backend  FAIL Invalid token")
	assert.Contains(t, out, "pdf      ok")
}

func TestWarmupRejectsPageCount(t *testing.T) {
	setEnv(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	_, err := run("warmup", "--pages", "50")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pages must be between 0 and 10")
}

func TestMissingConfigFails(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	_, err := run("ping")
	assert.Error(t, err)
}
