package charsetdemo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/imroc/req/v3"
	"go.uber.org/zap"
)

// Path is one way of getting the user list off the wire. Each path decodes
// at a different layer; ID names the page region it renders into.
type Path interface {
	ID() string
	Title() string
	// Note is markdown shown under the path's heading.
	Note() string
	// Fields is the schema Fetch reads records through.
	Fields() Schema
	Fetch(ctx context.Context) ([]Record, error)
}

// Options wires the four demo paths to an endpoint.
type Options struct {
	// BaseURL is the API endpoint; the api query parameter selects the payload.
	BaseURL string
	SJISAPI string
	UTF8API string
	Schema  Schema

	// RawEncoding is what the raw path decodes with, whatever the headers say.
	RawEncoding Encoding
	// TransportOverride and LibraryOverride replace the header-declared
	// charset on the delegated paths when set.
	TransportOverride string
	LibraryOverride   string

	HTTPClient *http.Client
	// ReqClient nil reproduces the library failing to load.
	ReqClient *req.Client

	Logger *zap.Logger
}

// NewPaths returns the raw, transport, library and control paths, in page
// order.
func NewPaths(o Options) []Path {
	if o.SJISAPI == "" {
		o.SJISAPI = "users-sjis"
	}
	if o.UTF8API == "" {
		o.UTF8API = "users-utf8"
	}
	if len(o.Schema) == 0 {
		o.Schema = DefaultSchema
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	sjis := apiURL(o.BaseURL, o.SJISAPI)
	return []Path{
		&RawPath{URL: sjis, Encoding: o.RawEncoding, Schema: o.Schema, Client: o.HTTPClient, Logger: o.Logger},
		&TransportPath{URL: sjis, Override: o.TransportOverride, Schema: o.Schema, Client: o.HTTPClient, Logger: o.Logger},
		&LibraryPath{URL: sjis, Override: o.LibraryOverride, Schema: o.Schema, Client: o.ReqClient, Logger: o.Logger},
		&ControlPath{URL: apiURL(o.BaseURL, o.UTF8API), Schema: o.Schema, Client: o.HTTPClient, Logger: o.Logger},
	}
}

func apiURL(base, api string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("api", api)
	u.RawQuery = q.Encode()
	return u.String()
}

// get performs the request and checks the status. The caller closes the
// body.
func get(ctx context.Context, client *http.Client, u string) (*http.Response, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	resp, err := client.Do(r)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &NetworkError{URL: u, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func readBody(u string, body io.Reader) ([]byte, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	return b, nil
}

func logFetch(log *zap.Logger, p Path, start time.Time, n int, err error) {
	if log == nil {
		return
	}
	fields := []zap.Field{
		zap.String("path", p.ID()),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		var me *MissingDependencyError
		if errors.As(err, &me) {
			log.Warn("path skipped", append(fields, zap.Error(err))...)
			return
		}
		log.Error("path failed", append(fields, zap.Error(err))...)
		return
	}
	log.Info("path fetched", append(fields, zap.Int("records", n))...)
}
