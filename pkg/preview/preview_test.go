package preview

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/u-haru/charsetdemo"
	"github.com/u-haru/charsetdemo/internal/apitest"
)

type failingPage struct{}

func (failingPage) Render(context.Context, io.Writer) error { return errors.New("boom") }

func TestIndexServesShiftJISPage(t *testing.T) {
	api := apitest.NewServer(&apitest.API{Users: apitest.Users})
	defer api.Close()

	log := zaptest.NewLogger(t)
	page := &charsetdemo.Page{
		Paths: charsetdemo.NewPaths(charsetdemo.Options{
			BaseURL:     api.URL + "/api",
			RawEncoding: charsetdemo.ShiftJIS,
			ReqClient:   charsetdemo.NewReqClient(5 * time.Second),
			Logger:      log,
		}),
		Charset: charsetdemo.ShiftJIS,
	}
	sv := &Server{Page: page, Charset: "Shift_JIS", Logger: log}

	w := httptest.NewRecorder()
	sv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=Shift_JIS", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	html, err := charsetdemo.Decode(w.Body.Bytes(), charsetdemo.ShiftJIS)
	require.NoError(t, err)
	assert.Contains(t, html, "<td>佐藤</td>")
}

func TestIndexRenderFailure(t *testing.T) {
	sv := &Server{Page: failingPage{}, Charset: "UTF-8", Logger: zaptest.NewLogger(t)}

	w := httptest.NewRecorder()
	sv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	sv := &Server{Page: failingPage{}, Charset: "UTF-8"}

	w := httptest.NewRecorder()
	sv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	sv := &Server{Page: failingPage{}, Charset: "UTF-8"}
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- sv.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRouterKeepsGinMode(t *testing.T) {
	mode := gin.Mode()
	defer gin.SetMode(mode)

	gin.SetMode(gin.TestMode)
	(&Server{Page: failingPage{}, Charset: "UTF-8"}).Router()
	assert.Equal(t, gin.TestMode, gin.Mode())
}
