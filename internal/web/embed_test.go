package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/po-scanner/backend/internal/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaticServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.POST("/upload", func(c echo.Context) error { return c.NoContent(http.StatusTeapot) })
	require.NoError(t, RegisterStaticRoutes(e))
	return e
}

func TestRegisterStaticRoutes(t *testing.T) {
	e := newStaticServer(t)

	tests := []struct {
		name         string
		method       string
		path         string
		wantStatus   int
		wantContains string
	}{
		{"index at root", http.MethodGet, "/", http.StatusOK, `id="uploadBtn"`},
		{"index by name", http.MethodGet, "/index.html", http.StatusOK, `id="pdfFile"`},
		{"script", http.MethodGet, "/js/script.js", http.StatusOK, `fetch("/upload"`},
		{"stylesheet", http.MethodGet, "/css/style.css", http.StatusOK, ".hidden"},
		{"unknown asset", http.MethodGet, "/js/missing.js", http.StatusNotFound, ""},
		{"directory", http.MethodGet, "/js", http.StatusNotFound, ""},
		{"upload route wins", http.MethodPost, "/upload", http.StatusTeapot, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantContains != "" {
				assert.Contains(t, rec.Body.String(), tt.wantContains)
			}
		})
	}
}

func TestPageElements(t *testing.T) {
	staticFS, err := GetFileSystem()
	require.NoError(t, err)
	page, err := fs.ReadFile(staticFS, "index.html")
	require.NoError(t, err)

	for _, id := range []string{"pdfFile", "uploadBtn", "status", "results", "output"} {
		assert.Contains(t, string(page), `id="`+id+`"`)
	}
	assert.Contains(t, string(page), `id="results" class="hidden"`)
}

// The page and the Go controller report the same status texts.
func TestScriptStatusTexts(t *testing.T) {
	staticFS, err := GetFileSystem()
	require.NoError(t, err)
	script, err := fs.ReadFile(staticFS, "js/script.js")
	require.NoError(t, err)

	for _, text := range []string{
		uploader.StatusNoFile,
		uploader.StatusUploading,
		uploader.StatusComplete,
		"❌ Error: ",
	} {
		assert.Contains(t, string(script), text)
	}
}
