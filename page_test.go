package charsetdemo_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/u-haru/charsetdemo"
	"github.com/u-haru/charsetdemo/internal/apitest"
)

func newPage(t *testing.T, url string, mod func(*charsetdemo.Options)) *charsetdemo.Page {
	o := charsetdemo.Options{
		BaseURL:     url + "/api",
		RawEncoding: charsetdemo.ShiftJIS,
		HTTPClient:  &http.Client{Timeout: 5 * time.Second},
		ReqClient:   charsetdemo.NewReqClient(5 * time.Second),
		Logger:      zaptest.NewLogger(t),
	}
	if mod != nil {
		mod(&o)
	}
	return &charsetdemo.Page{
		Paths:  charsetdemo.NewPaths(o),
		Logger: o.Logger,
	}
}

func TestPageRender(t *testing.T) {
	srv := apitest.NewServer(&apitest.API{Users: apitest.Users})
	defer srv.Close()

	var buf bytes.Buffer
	require.NoError(t, newPage(t, srv.URL, nil).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, `<meta charset="UTF-8">`)
	for _, id := range []string{"sjis-data-fetch", "sjis-data-xhr", "sjis-data-axios", "utf8-data"} {
		assert.Contains(t, html, `<div id="`+id+`">`)
	}
	assert.Equal(t, 4, strings.Count(html, "<th>name</th>"))
	assert.Equal(t, 4, strings.Count(html, "<td>田中</td>"))
	assert.Equal(t, 4, strings.Count(html, "<td>佐藤</td>"))
	assert.NotContains(t, html, "Error:")
}

func TestPageHeadersFollowPathSchema(t *testing.T) {
	srv := apitest.NewServer(&apitest.API{Users: apitest.Users})
	defer srv.Close()

	pg := newPage(t, srv.URL, func(o *charsetdemo.Options) {
		o.Schema = charsetdemo.Schema{"name", "city"}
	})
	var buf bytes.Buffer
	require.NoError(t, pg.Render(context.Background(), &buf))

	html := buf.String()
	assert.Equal(t, 4, strings.Count(html, "<th>city</th>"))
	assert.Equal(t, 4, strings.Count(html, "<tr><td>田中</td><td></td></tr>"))
}

func TestPageRegionsAreIsolated(t *testing.T) {
	srv := apitest.NewServer(&apitest.API{Users: apitest.Users})
	defer srv.Close()

	pg := newPage(t, srv.URL, func(o *charsetdemo.Options) { o.ReqClient = nil })
	regions := pg.Run(context.Background())
	require.Len(t, regions, 4)

	byID := map[string]string{}
	for _, rg := range regions {
		byID[rg.ID] = string(rg.HTML())
	}
	assert.Equal(t, `<p class="error">Error: req is not loaded</p>`, byID["sjis-data-axios"])
	for _, id := range []string{"sjis-data-fetch", "sjis-data-xhr", "utf8-data"} {
		assert.Contains(t, byID[id], "<td>田中</td>", id)
	}
}

func TestPageStatusError(t *testing.T) {
	srv := apitest.NewServer(&apitest.API{Status: http.StatusInternalServerError})
	defer srv.Close()

	var buf bytes.Buffer
	require.NoError(t, newPage(t, srv.URL, nil).Render(context.Background(), &buf))
	assert.Equal(t, 4, strings.Count(buf.String(), `<p class="error">Error: network error: 500`))
}

func TestPageEmpty(t *testing.T) {
	srv := apitest.NewServer(&apitest.API{Users: []map[string]string{}})
	defer srv.Close()

	var buf bytes.Buffer
	require.NoError(t, newPage(t, srv.URL, nil).Render(context.Background(), &buf))
	assert.Equal(t, 4, strings.Count(buf.String(), "<p>No data received.</p>"))
	assert.NotContains(t, buf.String(), "<table>")
}

func TestPageShiftJISOutput(t *testing.T) {
	srv := apitest.NewServer(&apitest.API{Users: apitest.Users})
	defer srv.Close()

	pg := newPage(t, srv.URL, nil)
	pg.Charset = charsetdemo.ShiftJIS

	var buf bytes.Buffer
	require.NoError(t, pg.Render(context.Background(), &buf))

	html, err := charsetdemo.Decode(buf.Bytes(), charsetdemo.ShiftJIS)
	require.NoError(t, err)
	assert.Contains(t, html, `<meta charset="Shift_JIS">`)
	assert.Equal(t, 4, strings.Count(html, "<td>田中</td>"))
}
