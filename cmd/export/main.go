// Command export writes every contact submission as CSV to a file, stdout,
// or an S3-compatible bucket. It reads the same environment as the server.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/pflag"

	"github.com/devfolio/portfolio/backend/internal/config"
	"github.com/devfolio/portfolio/backend/internal/contact/export"
	"github.com/devfolio/portfolio/backend/internal/contact/repository"
	"github.com/devfolio/portfolio/backend/internal/contact/service"
	"github.com/devfolio/portfolio/backend/internal/database"
	"github.com/devfolio/portfolio/backend/internal/storage"
	"github.com/devfolio/portfolio/backend/pkg/logger"
)

type options struct {
	out     string
	upload  bool
	prefix  string
	presign time.Duration
	tz      string
}

func main() {
	var o options
	fs := pflag.NewFlagSet("export", pflag.ExitOnError)
	fs.StringVarP(&o.out, "out", "o", "", `output file; "-" for stdout (default: contatos-YYYY-MM-DD.csv)`)
	fs.BoolVar(&o.upload, "upload", false, "upload the export to MinIO instead of writing a file")
	fs.StringVar(&o.prefix, "prefix", "exports/", "object key prefix used with --upload")
	fs.DurationVar(&o.presign, "presign", 0, "print a presigned download URL valid for this long (with --upload)")
	fs.StringVar(&o.tz, "timezone", "", "time zone for the date column (default: EXPORT_TIMEZONE)")
	_ = fs.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		logger.Errorf("export failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.SetOutput(os.Stderr)

	tz := cfg.Export.TimeZone
	if o.tz != "" {
		tz = o.tz
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load time zone %q: %w", tz, err)
	}

	repo, closeRepo, err := repository.Open(ctx, cfg, database.Retry{Attempts: 2, Backoff: time.Second})
	if err != nil {
		return err
	}
	defer func() { _ = closeRepo(context.Background()) }()

	data, err := service.New(repo, service.WithLocation(loc)).ExportCSV(ctx)
	if err != nil {
		return err
	}
	name := export.Filename(time.Now())

	if o.upload {
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
		key := o.prefix + name
		if err := st.UploadFile(ctx, key, bytes.NewReader(data), int64(len(data)), "text/csv; charset=utf-8"); err != nil {
			return err
		}
		logger.Infof("uploaded %d bytes to %s/%s", len(data), st.Bucket(), key)
		if o.presign > 0 {
			u, err := st.GetPresignedURL(ctx, key, o.presign)
			if err != nil {
				return err
			}
			fmt.Println(u)
		}
		return nil
	}

	switch o.out {
	case "-":
		_, err = os.Stdout.Write(data)
		return err
	case "":
		o.out = name
	}
	if err := os.WriteFile(o.out, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}
	logger.Infof("wrote %d bytes to %s", len(data), o.out)
	return nil
}
