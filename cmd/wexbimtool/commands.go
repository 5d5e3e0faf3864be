package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/wexbim-go/internal/batch"
	"github.com/Faultbox/wexbim-go/internal/config"
	"github.com/Faultbox/wexbim-go/pkg/math"
	"github.com/Faultbox/wexbim-go/pkg/wexbim"
)

func cmdInfo(args []string) error {
	fs, flags := newFlagSet("info")
	a, src, err := singleSource(fs, flags, args)
	if err != nil {
		return err
	}

	start := time.Now()
	g, err := a.load(src)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	h := g.Header
	s := batch.Summarize(g)
	fmt.Printf("Source:     %s\n", src)
	fmt.Printf("Version:    %d\n", h.Version)
	fmt.Printf("Meter:      %g\n", g.Meter)
	fmt.Printf("Shapes:     %d\n", h.NumShapes)
	side := wexbim.TextureSide(wexbim.ArityFloat32, len(g.Vertices))
	fmt.Printf("Vertices:   %d (buffer %d floats, %dx%d texels)\n", h.NumVertices, len(g.Vertices), side, side)
	fmt.Printf("Triangles:  %d (%d corners: %d opaque, %d transparent)\n", h.NumTriangles, s.Corners, s.Opaque, s.Transparent)
	fmt.Printf("Matrices:   %d (buffer %d floats)\n", h.NumMatrices, len(g.Matrices))
	fmt.Printf("Products:   %d (%d hidden by default)\n", s.Products, s.Hidden)
	fmt.Printf("Styles:     %d (buffer %d bytes)\n", s.Styles, len(g.Styles))
	fmt.Printf("Regions:    %d\n", len(g.Regions))
	if b, ok := g.Bounds(); ok {
		size := b.Size()
		fmt.Printf("Bounds:     %v .. %v (%.2f x %.2f x %.2f)\n", b.Min.Array(), b.Max.Array(), size.X, size.Y, size.Z)
		fmt.Printf("Centre:     %v (diagonal %.2f)\n", b.Centre().Array(), size.Length())
	}
	fmt.Printf("Decoded in: %v\n", elapsed.Round(time.Microsecond))
	return nil
}

func cmdRegions(args []string) error {
	fs, flags := newFlagSet("regions")
	a, src, err := singleSource(fs, flags, args)
	if err != nil {
		return err
	}
	g, err := a.load(src)
	if err != nil {
		return err
	}

	fmt.Printf("%-4s %10s  %-30s %s\n", "#", "Population", "Centre", "Size")
	for i, r := range g.Regions {
		size := r.Bounds().Size()
		fmt.Printf("%-4d %10d  %-30s %.2f x %.2f x %.2f\n",
			i, r.Population, fmt.Sprintf("%.2f, %.2f, %.2f", r.Centre[0], r.Centre[1], r.Centre[2]), size.X, size.Y, size.Z)
	}
	return nil
}

func cmdStyles(args []string) error {
	fs, flags := newFlagSet("styles")
	a, src, err := singleSource(fs, flags, args)
	if err != nil {
		return err
	}
	g, err := a.load(src)
	if err != nil {
		return err
	}

	// Count corners per dense style index.
	uses := make([]int, len(g.StyleMap))
	for _, si := range g.StyleIndices {
		if int(si) < len(uses) {
			uses[si]++
		}
	}

	fmt.Printf("%-6s %-10s %-18s %-12s %s\n", "Index", "ID", "RGBA", "Transparent", "Corners")
	for _, s := range g.StyleMap {
		c := s.Color
		fmt.Printf("%-6d %-10d %3d %3d %3d %3d    %-12t %d\n", s.Index, s.ID, c[0], c[1], c[2], c[3], s.Transparent, uses[s.Index])
	}
	return nil
}

func cmdProducts(args []string) error {
	fs, flags := newFlagSet("products")
	typ := fs.Int("type", 0, "Only products of this type id (0 = all)")
	hidden := fs.Bool("hidden", false, "Only products hidden by default")
	limit := fs.Int("n", 0, "Limit output to N products (0 = all)")
	at := fs.String("at", "", "Only products whose box contains the point x,y,z")
	a, src, err := singleSource(fs, flags, args)
	if err != nil {
		return err
	}
	var point *math.Vec3
	if *at != "" {
		p, err := parsePoint(*at)
		if err != nil {
			return err
		}
		point = &p
	}
	g, err := a.load(src)
	if err != nil {
		return err
	}

	products := make([]*wexbim.Product, 0, len(g.ProductMap))
	for i := range g.ProductMap {
		p := &g.ProductMap[i]
		if *typ != 0 && int(p.Type) != *typ {
			continue
		}
		if *hidden && !p.Type.HiddenByDefault() {
			continue
		}
		if point != nil && !p.Bounds().Contains(*point) {
			continue
		}
		products = append(products, p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Corners() > products[j].Corners()
	})

	fmt.Printf("%-10s %-18s %6s %8s  %-12s %s\n", "ID", "Type", "Spans", "Corners", "State", "Extent")
	count := 0
	for _, p := range products {
		if *limit > 0 && count >= *limit {
			break
		}
		state, err := g.ProductState(p.ID)
		if err != nil {
			return err
		}
		extent := "-"
		if b, ok := g.ProductExtent(p.ID); ok {
			size := b.Size()
			extent = fmt.Sprintf("%.2f x %.2f x %.2f", size.X, size.Y, size.Z)
		}
		fmt.Printf("%-10d %-18s %6d %8d  %-12s %s\n", p.ID, p.Type, len(p.Spans), p.Corners(), state, extent)
		count++
	}
	if count < len(products) {
		fmt.Printf("... and %d more\n", len(products)-count)
	}
	return nil
}

// parsePoint parses "x,y,z".
func parsePoint(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("point %q: want x,y,z", s)
	}
	var v [3]float32
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("point %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return math.Vec3From(v[:]), nil
}

func cmdStats(args []string) error {
	fs, flags := newFlagSet("stats")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.New("usage: wexbimtool stats [options] <source>...")
	}
	a, err := newApp(flags)
	if err != nil {
		return err
	}

	sources := fs.Args()
	a.log.Debug("batch decode", zap.Int("sources", len(sources)), zap.Int("workers", a.cfg.Batch.Workers))

	start := time.Now()
	results := batch.Run(context.Background(), a.loader, a.decoder, sources, a.cfg.Batch.Workers, a.log)
	wall := time.Since(start)

	var total batch.Summary
	failed := 0
	fmt.Printf("%-32s %10s %10s %10s %8s %10s\n", "Source", "Corners", "Opaque", "Transp.", "Products", "Time")
	for _, r := range results {
		name := filepath.Base(r.Source)
		if r.Err != nil {
			failed++
			fmt.Printf("%-32s FAILED: %v\n", name, r.Err)
			continue
		}
		s := batch.Summarize(r.Geometry)
		total.Corners += s.Corners
		total.Opaque += s.Opaque
		total.Transparent += s.Transparent
		total.Products += s.Products
		fmt.Printf("%-32s %10d %10d %10d %8d %10v\n", name, s.Corners, s.Opaque, s.Transparent, s.Products, r.Elapsed.Round(time.Millisecond))
	}
	fmt.Println()
	fmt.Printf("%-32s %10d %10d %10d %8d %10v\n", "Total", total.Corners, total.Opaque, total.Transparent, total.Products, wall.Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(results))
	}
	return nil
}

func cmdConfig(args []string) error {
	fs, flags := newFlagSet("config")
	out := fs.String("o", "", "Write to this path instead of the user config dir")
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if *out == "" {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	if err := cfg.SaveTo(*out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *out)
	return nil
}
