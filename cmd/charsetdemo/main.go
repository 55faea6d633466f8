// charsetdemo fetches the user list from a Shift_JIS API by three routes
// plus a UTF-8 control and writes the comparison page.
//
//	charsetdemo render [flags]   write the page to --output
//	charsetdemo serve [flags]    serve the page on --listen
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/imroc/req/v3"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/u-haru/charsetdemo"
	"github.com/u-haru/charsetdemo/pkg/config"
	"github.com/u-haru/charsetdemo/pkg/logger"
	"github.com/u-haru/charsetdemo/pkg/preview"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || (args[0] != "render" && args[0] != "serve") {
		fmt.Fprintln(os.Stderr, "usage: charsetdemo render|serve [flags]")
		return fmt.Errorf("unknown command %q", firstArg(args))
	}
	cmd := args[0]

	fs := pflag.NewFlagSet("charsetdemo "+cmd, pflag.ContinueOnError)
	config.AddFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, OutputPath: cfg.Log.Output})
	defer log.Sync()

	page, err := newPage(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd == "serve" {
		gin.SetMode(gin.ReleaseMode)
		sv := &preview.Server{Page: page, Charset: page.Charset.String(), Logger: log}
		if err := sv.ListenAndServe(ctx, cfg.Listen); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
	return render(ctx, page, cfg.Output)
}

func newPage(cfg *config.Config, log *zap.Logger) (*charsetdemo.Page, error) {
	raw, err := charsetdemo.ParseEncoding(cfg.RawEncoding)
	if err != nil {
		return nil, fmt.Errorf("raw_encoding %q: %w", cfg.RawEncoding, err)
	}
	out, err := charsetdemo.ParseEncoding(cfg.OutputCharset)
	if err != nil {
		return nil, fmt.Errorf("output_charset %q: %w", cfg.OutputCharset, err)
	}

	var rc *req.Client
	if !cfg.LibraryDisabled {
		rc = charsetdemo.NewReqClient(cfg.Timeout)
	}
	paths := charsetdemo.NewPaths(charsetdemo.Options{
		BaseURL:           cfg.APIURL,
		SJISAPI:           cfg.SJISAPI,
		UTF8API:           cfg.UTF8API,
		Schema:            charsetdemo.Schema(cfg.Schema),
		RawEncoding:       raw,
		TransportOverride: cfg.TransportOverride,
		LibraryOverride:   cfg.LibraryOverride,
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		ReqClient:         rc,
		Logger:            log,
	})
	return &charsetdemo.Page{
		Title:   cfg.Title,
		Paths:   paths,
		Charset: out,
		Logger:  log,
	}, nil
}

func render(ctx context.Context, page *charsetdemo.Page, output string) (err error) {
	if output == "" || output == "-" {
		return page.Render(ctx, os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", output, cerr)
		}
	}()
	return page.Render(ctx, f)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
