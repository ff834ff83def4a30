package folders

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestContext(method, url string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func TestPick_ReturnsPath(t *testing.T) {
	handler := &FoldersHandler{pick: func(ctx *gin.Context) (string, error) {
		return "/home/user/scans", nil
	}}

	c, w := createTestContext("GET", "/api/v1/folders/pick", nil)
	handler.Pick(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/home/user/scans", resp["path"])
}

func TestPick_CancelledIsNull(t *testing.T) {
	handler := &FoldersHandler{pick: func(ctx *gin.Context) (string, error) {
		return "", nil
	}}

	c, w := createTestContext("GET", "/api/v1/folders/pick", nil)
	handler.Pick(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["path"])
}

func TestPick_DialogError(t *testing.T) {
	handler := &FoldersHandler{pick: func(ctx *gin.Context) (string, error) {
		return "", fmt.Errorf("no display")
	}}

	c, w := createTestContext("GET", "/api/v1/folders/pick", nil)
	handler.Pick(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestValidate_CreatesMissingFolder(t *testing.T) {
	handler := New()
	target := filepath.Join(t.TempDir(), "new", "dest")

	body := fmt.Sprintf(`{"path": %q}`, target)
	c, w := createTestContext("POST", "/api/v1/folders/validate", strings.NewReader(body))
	handler.Validate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.DirExists(t, target)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, target, resp["path"])
}

func TestValidate_EmptyPath(t *testing.T) {
	handler := New()

	c, w := createTestContext("POST", "/api/v1/folders/validate", strings.NewReader(`{}`))
	handler.Validate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
