package charsetdemo

import (
	"bytes"
	"context"
	"time"

	"github.com/imroc/req/v3"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// NewReqClient returns the client the library path uses by default, with
// req's charset auto-decoding switched on for JSON and text bodies.
func NewReqClient(timeout time.Duration) *req.Client {
	return req.C().
		SetTimeout(timeout).
		EnableAutoDecode().
		SetAutoDecodeContentType("json", "text")
}

// LibraryPath hands the response to imroc/req and takes whatever text it
// produces. req picks the charset from Content-Type, so the result is only
// as right as the server's label.
type LibraryPath struct {
	URL string
	// Override, when set, turns req's auto-decoding off and decodes the
	// bytes as this label instead.
	Override string
	Schema   Schema
	Client   *req.Client
	Logger   *zap.Logger
}

func (p *LibraryPath) ID() string    { return "sjis-data-axios" }
func (p *LibraryPath) Title() string { return "3. imroc/req auto-decode" }

func (p *LibraryPath) Note() string {
	return "Relies on the HTTP library's default text decoding, which reads the `charset` " +
		"parameter of `Content-Type`. The library may be missing; the region then reports it."
}

func (p *LibraryPath) Fields() Schema { return schemaOrDefault(p.Schema) }

func (p *LibraryPath) Fetch(ctx context.Context) (recs []Record, err error) {
	defer func(start time.Time) { logFetch(p.Logger, p, start, len(recs), err) }(time.Now())

	if p.Client == nil {
		return nil, &MissingDependencyError{Name: "req"}
	}
	client := p.Client
	if p.Override != "" {
		client = client.Clone().DisableAutoDecode()
	}

	resp, err := client.R().SetContext(ctx).Get(p.URL)
	if err != nil {
		return nil, &NetworkError{URL: p.URL, Err: err}
	}
	if !resp.IsSuccessState() {
		return nil, &NetworkError{URL: p.URL, StatusCode: resp.StatusCode}
	}
	b, err := resp.ToBytes()
	if err != nil {
		return nil, &NetworkError{URL: p.URL, Err: err}
	}
	if p.Override != "" {
		r, err := charset.NewReaderLabel(p.Override, bytes.NewReader(b))
		if err != nil {
			return nil, &DecodeError{Op: "decode", Encoding: p.Override, Offset: -1, Err: err}
		}
		if b, err = readBody(p.URL, r); err != nil {
			return nil, err
		}
	}
	return DecodeRecords(b, p.Fields())
}
