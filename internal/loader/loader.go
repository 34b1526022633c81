package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/pkg/schema"
)

// Options configures how a Loader resolves sources.
type Options struct {
	// FileSystem serves SourceKindFS locations.
	FileSystem fs.FS
	// HTTPClient serves SourceKindURL locations.
	HTTPClient *http.Client
	// AllowHTTPFallback enables URL sources with a default client when no
	// HTTPClient is set.
	AllowHTTPFallback bool
	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Option mutates Options prior to construction.
type Option func(*Options)

// WithFileSystem injects an fs.FS for SourceKindFS locations.
func WithFileSystem(files fs.FS) Option {
	return func(opts *Options) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and an optional
// timeout.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithLogger sets the logger used to trace loads.
func WithLogger(logger *zap.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Loader delegates to file, fs.FS or HTTP strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	logger    *zap.Logger
}

// New constructs a Loader.
func New(options ...Option) *Loader {
	cfg := Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	timeout := cfg.RequestTimeout

	var httpClient *http.Client
	switch {
	case cfg.HTTPClient != nil:
		clone := *cfg.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case cfg.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		fs:        cfg.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		logger:    logger,
	}
}

// Load fetches a document from src.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if !l.allowHTTP {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = errors.New("loader: unsupported source kind")
	}
	if err != nil {
		return schema.Document{}, err
	}

	l.logger.Debug("document loaded",
		zap.String("kind", string(src.Kind())),
		zap.String("location", src.Location()),
		zap.Int("bytes", len(data)),
	)
	return schema.NewDocument(src, data)
}

// Locate picks the source kind for a CLI argument: http(s) URLs load over
// HTTP, everything else from disk.
func Locate(location string) (schema.Source, error) {
	if location == "" {
		return nil, errors.New("loader: location is required")
	}
	if isURL(location) {
		return schema.ParseURLSource(location)
	}
	return schema.SourceFromFile(location), nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
