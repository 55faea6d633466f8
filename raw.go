package charsetdemo

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RawPath reads the body as bytes and decodes it itself. Response headers
// play no part, so this is the one path whose result the program controls.
type RawPath struct {
	URL      string
	Encoding Encoding
	Schema   Schema
	Client   *http.Client
	Logger   *zap.Logger
}

func (p *RawPath) ID() string    { return "sjis-data-fetch" }
func (p *RawPath) Title() string { return "1. raw bytes + explicit decode" }

func (p *RawPath) Note() string {
	return "The body is read as raw bytes and decoded as **" + p.Encoding.String() +
		"** by the program. `Content-Type` is ignored; malformed bytes are an error, never `U+FFFD`."
}

func (p *RawPath) Fields() Schema { return schemaOrDefault(p.Schema) }

func (p *RawPath) Fetch(ctx context.Context) (recs []Record, err error) {
	defer func(start time.Time) { logFetch(p.Logger, p, start, len(recs), err) }(time.Now())

	resp, err := get(ctx, p.Client, p.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := readBody(p.URL, resp.Body)
	if err != nil {
		return nil, err
	}
	text, err := Decode(b, p.Encoding)
	if err != nil {
		return nil, err
	}
	return DecodeRecords([]byte(text), p.Fields())
}
