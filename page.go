package charsetdemo

import (
	"context"
	_ "embed"
	"html/template"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

// Page runs every path and lays the results out as one HTML document.
type Page struct {
	Title string
	Paths []Path
	// Charset is the encoding the document is written in.
	Charset Encoding
	Logger  *zap.Logger
}

type section struct {
	ID, Title string
	Note      template.HTML
	Body      template.HTML
}

// Run fetches every path concurrently, each into its own region. A failed
// path only shows its error in its region; Run itself does not fail.
func (pg *Page) Run(ctx context.Context) []*Region {
	regions := make([]*Region, len(pg.Paths))
	var g errgroup.Group
	for i, p := range pg.Paths {
		p := p
		rg := &Region{ID: p.ID()}
		regions[i] = rg
		g.Go(func() error {
			RunPath(ctx, p, rg)
			return nil
		})
	}
	g.Wait()
	return regions
}

// RunPath fetches p and renders the outcome into sink, headed by the
// fields p decoded with.
func RunPath(ctx context.Context, p Path, sink Sink) {
	recs, err := p.Fetch(ctx)
	if err != nil {
		sink.Error(err)
		return
	}
	sink.Table(p.Fields(), recs)
}

// Render runs the paths and writes the document to w in pg.Charset.
func (pg *Page) Render(ctx context.Context, w io.Writer) error {
	regions := pg.Run(ctx)
	sections := make([]section, len(pg.Paths))
	for i, p := range pg.Paths {
		sections[i] = section{
			ID:    p.ID(),
			Title: p.Title(),
			Note:  renderNote(p.Note()),
			Body:  regions[i].HTML(),
		}
	}

	title := pg.Title
	if title == "" {
		title = "Shift_JIS decode comparison"
	}
	out := NewEncodeWriter(w, pg.Charset)
	if err := pageTmpl.Execute(out, struct {
		Title    string
		Charset  string
		Sections []section
	}{title, pg.Charset.String(), sections}); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if pg.Logger != nil {
		pg.Logger.Debug("page rendered", zap.String("charset", pg.Charset.String()), zap.Int("paths", len(pg.Paths)))
	}
	return nil
}
