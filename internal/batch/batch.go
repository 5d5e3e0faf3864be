// Package batch decodes many model-geometry sources on a bounded worker pool.
package batch

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/wexbim-go/internal/loader"
	"github.com/Faultbox/wexbim-go/pkg/wexbim"
)

// Result is the outcome of one source.
type Result struct {
	Source   string
	Geometry *wexbim.ModelGeometry
	Err      error
	Elapsed  time.Duration
}

// Summary holds the figures printed for one decoded model.
type Summary struct {
	Corners     int
	Opaque      int
	Transparent int
	Products    int
	Styles      int
	Hidden      int // Products that start hidden
	Vertices    int // As declared in the header
}

// Summarize computes the Summary of a decoded model.
func Summarize(g *wexbim.ModelGeometry) Summary {
	s := Summary{
		Corners:     g.Corners(),
		Opaque:      g.TransparentStart(),
		Transparent: g.Corners() - g.TransparentStart(),
		Products:    len(g.ProductMap),
		Styles:      len(g.StyleMap),
		Vertices:    int(g.Header.NumVertices),
	}
	for i := range g.ProductMap {
		if g.ProductMap[i].Type.HiddenByDefault() {
			s.Hidden++
		}
	}
	return s
}

// Run loads and decodes every source with at most workers in flight.
// Results keep the order of sources. Each decode runs on its own Decoder
// state, so the shared dec is only read.
func Run(ctx context.Context, ldr *loader.Loader, dec *wexbim.Decoder, sources []string, workers int, log *zap.Logger) []Result {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	results := make([]Result, len(sources))
	pool := pond.NewPool(workers)

	for i, src := range sources {
		i, src := i, src // per-iteration copies (go directive < 1.22)
		pool.Submit(func() {
			start := time.Now()
			g, err := ldr.Load(ctx, src, dec)
			results[i] = Result{Source: src, Geometry: g, Err: err, Elapsed: time.Since(start)}
			if err != nil {
				log.Debug("decode failed", zap.String("source", src), zap.Error(err))
				return
			}
			log.Debug("decoded", zap.String("source", src), zap.Int("corners", g.Corners()))
		})
	}

	pool.StopAndWait()
	return results
}
