// Package compositor rasterizes posters: background, masked photo and the text
// zones computed by the layout package, encoded as PNG.
package compositor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xob0t/GoPoster/pkg/generator"
	"github.com/xob0t/GoPoster/pkg/geometry"
	"github.com/xob0t/GoPoster/pkg/layout"
	"github.com/xob0t/GoPoster/pkg/logging"
	"github.com/xob0t/GoPoster/pkg/template"
)

// Mode selects which background asset a render uses.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeFinal   Mode = "final"
)

// RenderRequest is one poster to render. It is a plain value; the template is
// never modified.
type RenderRequest struct {
	Template   template.Template      `json:"template"`
	Content    layout.Content         `json:"content"`
	TargetSize int                    `json:"targetSize"`
	Mode       Mode                   `json:"mode"`
	Overrides  *layout.DebugOverrides `json:"overrides,omitempty"`
}

// Result is a completed render.
type Result struct {
	Image    *image.RGBA
	Layout   []layout.ZoneLayoutResult
	Degraded []TextDegradation
}

// Stage is a step of the render state machine.
type Stage string

const (
	StagePending        Stage = "pending"
	StageFetchingAssets Stage = "fetching_assets"
	StageCompositing    Stage = "compositing"
	StageEncoding       Stage = "encoding"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// Stats counts renders since the compositor was created.
type Stats struct {
	Renders       int64 `json:"renders"`
	Failed        int64 `json:"failed"`
	DegradedZones int64 `json:"degradedZones"`
}

// PlaceholderColor fills text zones that could not be drawn.
var PlaceholderColor = color.RGBA{0x9e, 0x9e, 0x9e, 0xff}

// Compositor renders posters. It is safe for concurrent use; every render
// gets its own faces and canvas.
type Compositor struct {
	fonts        layout.FaceSource
	fetcher      Fetcher
	cache        *BackgroundCache
	tuning       layout.Tuning
	cheapLayout  bool
	fetchTimeout time.Duration
	observer     func(templateID string, s Stage)
	log          *zerolog.Logger

	renders  atomic.Int64
	failed   atomic.Int64
	degraded atomic.Int64
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithCache shares decoded backgrounds between renders.
func WithCache(c *BackgroundCache) Option { return func(p *Compositor) { p.cache = c } }

// WithTuning replaces the default layout tuning.
func WithTuning(t layout.Tuning) Option { return func(p *Compositor) { p.tuning = t } }

// WithEstimatedLayout lays text out with layout.EstimateMeasurer instead of
// glyph metrics. Glyphs are still drawn from real faces.
func WithEstimatedLayout() Option { return func(p *Compositor) { p.cheapLayout = true } }

// WithFetchTimeout bounds background loads shared through the cache, which
// outlive the request that started them.
func WithFetchTimeout(d time.Duration) Option { return func(p *Compositor) { p.fetchTimeout = d } }

// WithObserver is called on every stage transition. RenderSet calls it from
// two goroutines.
func WithObserver(fn func(templateID string, s Stage)) Option {
	return func(p *Compositor) { p.observer = fn }
}

// WithLogger replaces the component logger.
func WithLogger(l *zerolog.Logger) Option { return func(p *Compositor) { p.log = l } }

// New creates a compositor drawing glyphs from fonts and loading images with f.
func New(fonts layout.FaceSource, f Fetcher, opts ...Option) *Compositor {
	c := &Compositor{
		fonts:        fonts,
		fetcher:      f,
		tuning:       layout.DefaultTuning(),
		fetchTimeout: 30 * time.Second,
		log:          logging.WithComponent("compositor"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stats returns the render counters.
func (c *Compositor) Stats() Stats {
	return Stats{Renders: c.renders.Load(), Failed: c.failed.Load(), DegradedZones: c.degraded.Load()}
}

// Calculator returns a layout calculator configured like the compositor's,
// for callers that only need the layout (the layout endpoint, the CLI).
func (c *Compositor) Calculator(m layout.Measurer) *layout.Calculator {
	calc := layout.NewCalculator(m)
	calc.Tuning = c.tuning
	return calc
}

// Render composites the poster. On error no image is returned.
func (c *Compositor) Render(ctx context.Context, req RenderRequest) (*Result, error) {
	res, err := c.render(ctx, req)
	if err != nil {
		return nil, err
	}
	c.stage(req, StageDone)
	return res, nil
}

// RenderPNG renders and encodes the poster as PNG.
func (c *Compositor) RenderPNG(ctx context.Context, req RenderRequest) ([]byte, *Result, error) {
	res, err := c.render(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	c.stage(req, StageEncoding)
	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ".png", generator.Config{Image: res.Image}); err != nil {
		c.fail(req, err)
		return nil, nil, fmt.Errorf("encode poster: %w", err)
	}
	c.stage(req, StageDone)
	return buf.Bytes(), res, nil
}

// RenderSet renders the preview and final sizes of one request concurrently.
// Both go through the same layout code; a layout mismatch between them is
// logged, not fatal.
func (c *Compositor) RenderSet(ctx context.Context, req RenderRequest, previewSize, finalSize int) (preview, final []byte, err error) {
	var pres, fres *Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r := req
		r.TargetSize, r.Mode = previewSize, ModePreview
		var err error
		preview, pres, err = c.RenderPNG(gctx, r)
		return err
	})
	g.Go(func() error {
		r := req
		r.TargetSize, r.Mode = finalSize, ModeFinal
		var err error
		final, fres, err = c.RenderPNG(gctx, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if rep := layout.Compare(pres.Layout, previewSize, fres.Layout, finalSize, 1); !rep.Consistent() {
		c.log.Warn().Str("template", req.Template.ID).Strs("diffs", rep.Diffs).
			Msg("preview and final layouts differ")
	}
	return preview, final, nil
}

func (c *Compositor) render(ctx context.Context, req RenderRequest) (*Result, error) {
	c.renders.Add(1)
	c.stage(req, StagePending)
	tpl := req.Template

	if req.TargetSize <= 0 {
		err := fmt.Errorf("invalid target size %d", req.TargetSize)
		c.fail(req, err)
		return nil, err
	}

	faces := layout.NewFaceMeasurer(c.fonts)
	defer faces.Close()

	var measurer layout.Measurer = faces
	if c.cheapLayout {
		measurer = layout.EstimateMeasurer{}
	}
	zones, err := c.Calculator(measurer).LayoutWith(tpl, req.Content, req.TargetSize, req.Overrides)
	if err != nil {
		c.fail(req, err)
		return nil, err
	}
	if req.Overrides != nil {
		tpl = template.ApplyOverrides(tpl, req.Overrides.Zones)
	}

	// Both fetches must finish before anything is drawn.
	c.stage(req, StageFetchingAssets)
	var bg, photo image.Image
	photoZone, hasPhotoZone := tpl.PhotoZone()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bg, err = c.background(gctx, tpl, req.Mode == ModePreview)
		return err
	})
	if hasPhotoZone && req.Content.PhotoURL != "" {
		g.Go(func() error {
			img, err := FetchImage(gctx, c.fetcher, req.Content.PhotoURL)
			if err != nil {
				return &AssetFetchError{Asset: AssetPhoto, Ref: req.Content.PhotoURL, Err: err}
			}
			photo = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.fail(req, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		c.fail(req, err)
		return nil, err
	}

	c.stage(req, StageCompositing)
	scaler := geometry.NewScaler(req.TargetSize, geometry.Canonical)
	canvas := newCanvas(bg, req.TargetSize)
	if photo != nil {
		r := scaler.Rect(photoZone.Rect())
		if !r.Empty() {
			stampPhoto(canvas, photo, r.Image(), scaler.Pxf(photoZone.BorderRadius))
		}
	}

	res := &Result{Image: canvas, Layout: zones}
	for _, z := range zones {
		if err := drawZone(canvas, faces, z); err != nil {
			d := TextDegradation{Zone: z.ZoneType, Err: err}
			res.Degraded = append(res.Degraded, d)
			c.degraded.Add(1)
			c.log.Warn().Err(err).Str("template", tpl.ID).Str("zone", string(z.ZoneType)).
				Msg("text zone replaced by placeholder")
			fillPlaceholder(canvas, z)
		}
	}

	if err := ctx.Err(); err != nil {
		c.fail(req, err)
		return nil, err
	}
	return res, nil
}

// background loads the template background for the mode, through the cache
// when one is configured.
func (c *Compositor) background(ctx context.Context, tpl template.Template, preview bool) (image.Image, error) {
	ref := tpl.BackgroundURL(preview)
	load := func(ctx context.Context) (image.Image, error) {
		img, err := FetchImage(ctx, c.fetcher, ref)
		if err != nil {
			return nil, &AssetFetchError{Asset: AssetBackground, Ref: ref, Err: err}
		}
		return img, nil
	}
	if c.cache == nil {
		return load(ctx)
	}
	return c.cache.Get(ctx, tpl.ID, ref, func() (image.Image, error) {
		// Shared loads outlive the caller that started them.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		return load(lctx)
	})
}

// drawZone draws the zone's lines aligned inside its width. Panics from the
// glyph rasterizer are reported as errors.
func drawZone(canvas *image.RGBA, faces *layout.FaceMeasurer, z layout.ZoneLayoutResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("draw text: %v", r)
		}
	}()

	face, err := faces.Face(z.Font())
	if err != nil {
		return err
	}
	col, err := generator.ParseColor(z.Color)
	if err != nil {
		return err
	}

	dc := gg.NewContextForRGBA(canvas)
	dc.SetFontFace(face)
	dc.SetColor(col)

	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	for i, line := range z.Lines {
		top := float64(z.OriginY) + float64(i)*z.LineHeightPx
		baseline := top + (z.LineHeightPx-(ascent+descent))/2 + ascent
		dc.DrawString(line, alignX(z, faces.Measure(line, z.Font())), baseline)
	}
	return nil
}

// alignX is the left edge of a line of the given width inside the zone.
func alignX(z layout.ZoneLayoutResult, width float64) float64 {
	x := float64(z.OriginX)
	switch z.TextAlign {
	case template.AlignCenter:
		return x + (float64(z.WidthPx)-width)/2
	case template.AlignRight:
		return x + float64(z.WidthPx) - width
	}
	return x
}

func fillPlaceholder(canvas *image.RGBA, z layout.ZoneLayoutResult) {
	dc := gg.NewContextForRGBA(canvas)
	dc.SetColor(PlaceholderColor)
	dc.DrawRectangle(float64(z.OriginX), float64(z.OriginY), float64(z.WidthPx), z.HeightPx())
	dc.Fill()
}

func (c *Compositor) stage(req RenderRequest, s Stage) {
	c.log.Debug().Str("template", req.Template.ID).Int("size", req.TargetSize).
		Str("mode", string(req.Mode)).Str("stage", string(s)).Msg("render stage")
	if c.observer != nil {
		c.observer(req.Template.ID, s)
	}
}

func (c *Compositor) fail(req RenderRequest, err error) {
	c.failed.Add(1)
	ev := c.log.Warn()
	var fetchErr *AssetFetchError
	if errors.As(err, &fetchErr) {
		ev = c.log.Error()
	}
	ev.Err(err).Str("template", req.Template.ID).Msg("render failed")
	c.stage(req, StageFailed)
}
