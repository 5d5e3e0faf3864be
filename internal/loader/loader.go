// Package loader fetches model-geometry streams from disk or over HTTP and
// hands the buffered bytes to a wexbim.Decoder.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Faultbox/wexbim-go/pkg/wexbim"
)

// Errors returned by the loader.
var (
	ErrTooLarge   = errors.New("source exceeds size limit")
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// Options configures a Loader. The zero value reads plain files and URLs
// with no timeout or size limit.
type Options struct {
	Timeout    time.Duration // Per fetch, 0 means none
	MaxBytes   int64         // Applies to raw and decompressed data, 0 means unlimited
	Decompress bool          // Inflate zstd and gzip payloads by magic number
	Client     *http.Client  // Defaults to http.DefaultClient
	Logger     *zap.Logger   // Defaults to a no-op logger
}

// Loader acquires byte sources.
type Loader struct {
	opts   Options
	client *http.Client
	log    *zap.Logger
}

// New returns a Loader with the given options.
func New(opts Options) *Loader {
	l := &Loader{opts: opts, client: opts.Client, log: opts.Logger}
	if l.client == nil {
		l.client = http.DefaultClient
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	return l
}

// IsURL reports whether src is fetched over HTTP.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch reads src fully into memory.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		data []byte
		err  error
	)
	if IsURL(src) {
		data, err = l.fetchHTTP(ctx, src)
	} else {
		data, err = l.readFile(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	compression := "none"
	if l.opts.Decompress {
		compression, data, err = l.decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", src, err)
		}
	}

	l.log.Debug("fetched",
		zap.String("source", src),
		zap.Int("bytes", len(data)),
		zap.String("compression", compression),
		zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

// Load fetches src and decodes it.
func (l *Loader) Load(ctx context.Context, src string, dec *wexbim.Decoder) (*wexbim.ModelGeometry, error) {
	data, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	g, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}
	return g, nil
}

// LoadAsync runs Load in a new goroutine and reports the outcome through
// exactly one of the callbacks. Either callback may be nil.
func (l *Loader) LoadAsync(ctx context.Context, src string, dec *wexbim.Decoder,
	onLoaded func(*wexbim.ModelGeometry), onError func(error)) {
	go func() {
		g, err := l.Load(ctx, src, dec)
		if err != nil {
			l.log.Warn("load failed", zap.String("source", src), zap.Error(err))
			if onError != nil {
				onError(err)
			}
			return
		}
		if onLoaded != nil {
			onLoaded(g)
		}
	}()
}

func (l *Loader) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %w: %s", src, ErrHTTPStatus, resp.Status)
	}
	data, err := l.readAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	return data, nil
}

func (l *Loader) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading wexbim file: %w", err)
	}
	defer f.Close()

	data, err := l.readAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// readAll reads r up to the configured limit.
func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	if l.opts.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.opts.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.opts.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.opts.MaxBytes)
	}
	return data, nil
}

// decompress inflates data when it starts with a zstd or gzip frame and
// returns it unchanged otherwise.
func (l *Loader) decompress(data []byte) (string, []byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		opts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
		if l.opts.MaxBytes > 0 {
			opts = append(opts, zstd.WithDecoderMaxMemory(uint64(l.opts.MaxBytes)))
		}
		zr, err := zstd.NewReader(bytes.NewReader(data), opts...)
		if err != nil {
			return "zstd", nil, err
		}
		defer zr.Close()
		out, err := l.readAll(zr)
		return "zstd", out, err

	case bytes.HasPrefix(data, gzipMagic):
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return "gzip", nil, err
		}
		defer gr.Close()
		out, err := l.readAll(gr)
		return "gzip", out, err

	default:
		return "none", data, nil
	}
}
