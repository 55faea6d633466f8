package charsetdemo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// TransportPath leaves decoding to the transport: the body goes through
// x/net's charset reader, which trusts the charset parameter of
// Content-Type. Without one it sniffs the first 1024 bytes and falls back
// to windows-1252, so an unlabeled Shift_JIS body comes out as mojibake.
// That outcome is what this path exists to show.
type TransportPath struct {
	URL string
	// Override, when set, is used instead of the declared charset.
	Override string
	Schema   Schema
	Client   *http.Client
	Logger   *zap.Logger
}

func (p *TransportPath) ID() string    { return "sjis-data-xhr" }
func (p *TransportPath) Title() string { return "2. net/http + Content-Type charset" }

func (p *TransportPath) Note() string {
	if p.Override != "" {
		return "Decoded as `" + p.Override + "` regardless of the response headers."
	}
	return "Decoding follows the `charset` parameter of `Content-Type`. " +
		"If the server omits it or gets it wrong, expect mojibake."
}

func (p *TransportPath) Fields() Schema { return schemaOrDefault(p.Schema) }

func (p *TransportPath) Fetch(ctx context.Context) (recs []Record, err error) {
	defer func(start time.Time) { logFetch(p.Logger, p, start, len(recs), err) }(time.Now())

	resp, err := get(ctx, p.Client, p.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	r, err := p.charsetReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	b, err := readBody(p.URL, r)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(b, p.Fields())
}

func (p *TransportPath) charsetReader(body io.Reader, contentType string) (io.Reader, error) {
	var (
		r   io.Reader
		err error
	)
	if p.Override != "" {
		r, err = charset.NewReaderLabel(p.Override, body)
	} else {
		r, err = charset.NewReader(body, contentType)
	}
	switch {
	case errors.Is(err, io.EOF):
		return strings.NewReader(""), nil
	case err != nil:
		return nil, &DecodeError{Op: "decode", Offset: -1, Err: err}
	}
	return r, nil
}
