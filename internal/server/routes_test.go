package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papersort/papersort/internal/session"
)

func setupTestServer(t *testing.T) (http.Handler, *Services) {
	t.Helper()
	services, err := NewServices()
	require.NoError(t, err)
	t.Cleanup(func() {
		services.Shutdown(context.Background())
	})
	return SetupRoutes(services), services
}

func doJSON(t *testing.T, handler http.Handler, method, url, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := map[string]any{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHealthz(t *testing.T) {
	handler, _ := setupTestServer(t)

	w, resp := doJSON(t, handler, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["status"])
}

func TestIndex_ServesEmbeddedUI(t *testing.T) {
	handler, _ := setupTestServer(t)

	w, _ := doJSON(t, handler, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "PaperSort")
}

func TestVersionEndpoint(t *testing.T) {
	handler, _ := setupTestServer(t)

	w, _ := doJSON(t, handler, "GET", "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PaperSort")
}

func TestNoRoute(t *testing.T) {
	handler, _ := setupTestServer(t)

	w, resp := doJSON(t, handler, "GET", "/api/v1/bogus", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", resp["error"])
}

func TestSessionEndpoint_BeforeLoad(t *testing.T) {
	handler, _ := setupTestServer(t)

	w, resp := doJSON(t, handler, "GET", "/api/v1/session", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "E_NO_SESSION", resp["code"])
}

func TestSessionFlowOverHTTP(t *testing.T) {
	handler, _ := setupTestServer(t)

	source := t.TempDir()
	dest1 := filepath.Join(t.TempDir(), "keep")
	dest2 := filepath.Join(t.TempDir(), "shred")
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(source, name), []byte("%PDF-1.4"), 0o644))
	}

	// load
	body := fmt.Sprintf(`{"source": %q, "dest1": %q, "dest2": %q}`, source, dest1, dest2)
	w, resp := doJSON(t, handler, "POST", "/api/v1/session/load", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, resp["entries"], 3)
	assert.EqualValues(t, 0, resp["currentIndex"])

	// sort a.pdf to dest1
	w, resp = doJSON(t, handler, "POST", "/api/v1/session/sort", `{"target": 1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, resp["currentIndex"])
	assert.FileExists(t, filepath.Join(dest1, "a.pdf"))

	entries := resp["entries"].([]any)
	first := entries[0].(map[string]any)
	assert.Equal(t, string(session.StatusSortedTo1), first["status"])

	// undo brings it back
	w, resp = doJSON(t, handler, "POST", "/api/v1/session/undo", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, resp["undone"])
	assert.FileExists(t, filepath.Join(source, "a.pdf"))

	view := resp["session"].(map[string]any)
	assert.EqualValues(t, 0, view["currentIndex"])

	// second undo is benign
	w, resp = doJSON(t, handler, "POST", "/api/v1/session/undo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["undone"])

	// navigation clamps
	for range 5 {
		w, resp = doJSON(t, handler, "POST", "/api/v1/session/next", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.EqualValues(t, 2, resp["currentIndex"])
}

func TestLoad_MissingSourceOverHTTP(t *testing.T) {
	handler, _ := setupTestServer(t)

	body := fmt.Sprintf(`{"source": %q, "dest1": %q, "dest2": %q}`,
		filepath.Join(t.TempDir(), "missing"), t.TempDir(), t.TempDir())
	w, resp := doJSON(t, handler, "POST", "/api/v1/session/load", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "E_FOLDER_NOT_FOUND", resp["code"])
}

func TestValidateFolderOverHTTP(t *testing.T) {
	handler, _ := setupTestServer(t)

	target := filepath.Join(t.TempDir(), "fresh")
	w, resp := doJSON(t, handler, "POST", "/api/v1/folders/validate", fmt.Sprintf(`{"path": %q}`, target))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["valid"])
	assert.DirExists(t, target)
}
