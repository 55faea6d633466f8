package charsetdemo

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ControlPath fetches the UTF-8 payload and parses it as is.
type ControlPath struct {
	URL    string
	Schema Schema
	Client *http.Client
	Logger *zap.Logger
}

func (p *ControlPath) ID() string    { return "utf8-data" }
func (p *ControlPath) Title() string { return "UTF-8 API (control)" }
func (p *ControlPath) Note() string  { return "Same data served as UTF-8. Every path should match this." }

func (p *ControlPath) Fields() Schema { return schemaOrDefault(p.Schema) }

func (p *ControlPath) Fetch(ctx context.Context) (recs []Record, err error) {
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
	return DecodeRecords(b, p.Fields())
}
