package fetcher

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/nao1215/airscrape/internal/model"
)

// Recorder persists the outcome of each download and returns the latest
// one per airline, or nil when the airline was never fetched.
// The run history database implements it.
type Recorder interface {
	InsertFetchResult(ctx context.Context, result model.FetchResult) error
	GetFetchResult(ctx context.Context, airline string) (*model.FetchResult, error)
}

// Downloader fetches every airline's page in order and saves the successful
// ones to the cache.
type Downloader struct {
	client   *Client
	cache    *Cache
	recorder Recorder
	logger   *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithRecorder records every fetch result, successful or not.
func WithRecorder(r Recorder) DownloaderOption {
	return func(d *Downloader) {
		d.recorder = r
	}
}

// WithDownloaderLogger sets a custom logger for the downloader.
func WithDownloaderLogger(logger *slog.Logger) DownloaderOption {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// NewDownloader creates a Downloader.
func NewDownloader(client *Client, cache *Cache, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: client,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches each airline sequentially. Failed fetches are logged and
// skipped; the returned slice has one result per airline in input order.
// Only cancellation of ctx stops the loop early.
func (d *Downloader) Download(ctx context.Context, airlines []string) ([]model.FetchResult, error) {
	results := make([]model.FetchResult, 0, len(airlines))

	for _, airline := range airlines {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := model.FetchResult{
			Airline:   airline,
			URL:       d.client.URL(airline),
			FetchedAt: time.Now(),
		}

		status, body, err := d.client.Fetch(ctx, airline)
		res.StatusCode = status
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) {
				return results, err
			}
			res.Error = err.Error()
			d.logger.Warn("failed to fetch reviews", "airline", airline, "status", status, "error", err)
		default:
			path, err := d.cache.Save(airline, body)
			if err != nil {
				res.Error = err.Error()
				d.logger.Warn("failed to save review page", "airline", airline, "error", err)
				break
			}
			sum := blake2b.Sum256(body)
			res.Path = path
			res.Bytes = len(body)
			res.Hash = hex.EncodeToString(sum[:])
			d.logger.Info("saved review page", "airline", airline, "path", path, "bytes", len(body))
		}

		if d.recorder != nil {
			if res.Success() {
				d.markUnchanged(ctx, &res)
			}
			if err := d.recorder.InsertFetchResult(ctx, res); err != nil {
				d.logger.Warn("failed to record fetch", "airline", airline, "error", err)
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// markUnchanged compares res with the airline's previous download.
func (d *Downloader) markUnchanged(ctx context.Context, res *model.FetchResult) {
	prev, err := d.recorder.GetFetchResult(ctx, res.Airline)
	if err != nil {
		d.logger.Warn("failed to read previous fetch", "airline", res.Airline, "error", err)
		return
	}
	if prev == nil || prev.Hash != res.Hash {
		return
	}
	res.Unchanged = true
	d.logger.Info("review page unchanged since last fetch",
		"airline", res.Airline,
		"previous", prev.FetchedAt.Format(time.RFC3339),
	)
}
