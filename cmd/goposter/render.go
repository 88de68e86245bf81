// render.go — render, layout and check commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xob0t/GoPoster/pkg/compositor"
	"github.com/xob0t/GoPoster/pkg/generator"
	"github.com/xob0t/GoPoster/pkg/layout"
	"github.com/xob0t/GoPoster/pkg/template"
)

// posterFlags are the inputs shared by render, layout and check.
type posterFlags struct {
	template  string
	content   string
	name      string
	title     string
	photo     string
	overrides string
}

func (p *posterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.template, "template", "t", "", "Template JSON, .gsposter bundle, or id in the templates directory")
	cmd.Flags().StringVarP(&p.content, "content", "c", "", "Content JSON with name, title and photoUrl (optional)")
	cmd.Flags().StringVar(&p.name, "name", "", "Name text (overrides content)")
	cmd.Flags().StringVar(&p.title, "title", "", "Title text (overrides content)")
	cmd.Flags().StringVar(&p.photo, "photo", "", "Photo path or URL (overrides content)")
	cmd.Flags().StringVar(&p.overrides, "overrides", "", "Debug overrides JSON (zone geometry, tuning)")
	cmd.MarkFlagRequired("template")
}

// load resolves the template, content and overrides. The cleanup function
// removes extracted bundle files.
func (p *posterFlags) load(a *app) (template.Template, layout.Content, *layout.DebugOverrides, func(), error) {
	tpl, cleanup, err := a.loadTemplate(p.template)
	if err != nil {
		return template.Template{}, layout.Content{}, nil, nil, err
	}
	fail := func(err error) (template.Template, layout.Content, *layout.DebugOverrides, func(), error) {
		cleanup()
		return template.Template{}, layout.Content{}, nil, nil, err
	}

	var content layout.Content
	if p.content != "" {
		data, err := os.ReadFile(p.content)
		if err != nil {
			return fail(fmt.Errorf("read content: %w", err))
		}
		if err := json.Unmarshal(data, &content); err != nil {
			return fail(fmt.Errorf("parse content: %w", err))
		}
		content.PhotoURL = resolveLocal(content.PhotoURL, filepath.Dir(p.content))
	}
	if p.name != "" {
		content.Name = p.name
	}
	if p.title != "" {
		content.Title = p.title
	}
	if p.photo != "" {
		content.PhotoURL = p.photo
	}

	var overrides *layout.DebugOverrides
	if p.overrides != "" {
		data, err := os.ReadFile(p.overrides)
		if err != nil {
			return fail(fmt.Errorf("read overrides: %w", err))
		}
		overrides = &layout.DebugOverrides{}
		if err := json.Unmarshal(data, overrides); err != nil {
			return fail(fmt.Errorf("parse overrides: %w", err))
		}
	}
	return tpl, content, overrides, cleanup, nil
}

// loadTemplate accepts a JSON file, a bundle, or a template id looked up in
// the configured templates directory.
func (a *app) loadTemplate(ref string) (template.Template, func(), error) {
	noop := func() {}
	opts := a.cfg.NormalizeOptions()

	switch strings.ToLower(filepath.Ext(ref)) {
	case template.BundleExt:
		tpl, cleanup, err := template.LoadBundle(ref, opts)
		if err != nil {
			return template.Template{}, noop, err
		}
		return *tpl, cleanup, nil
	case ".json":
		tpl, err := template.LoadFile(ref, opts)
		if err != nil {
			return template.Template{}, noop, err
		}
		return *tpl, noop, nil
	}

	store := template.NewStore()
	if _, _, err := store.LoadDir(a.cfg.Templates.Dir, opts); err != nil {
		return template.Template{}, noop, err
	}
	tpl, err := store.Get(ref)
	if err != nil {
		store.Close()
		return template.Template{}, noop, err
	}
	return tpl, store.Close, nil
}

// resolveLocal makes a relative file reference relative to base.
func resolveLocal(ref, base string) string {
	if ref == "" || filepath.IsAbs(ref) || strings.Contains(ref, "://") ||
		strings.HasPrefix(ref, compositor.AssetScheme) {
		return ref
	}
	return filepath.Join(base, ref)
}

func (a *app) newCompositor() (*compositor.Compositor, error) {
	fm, err := a.cfg.FontManager()
	if err != nil {
		return nil, err
	}
	httpFetcher := compositor.NewHTTPFetcher(a.cfg.Render.FetchTimeout)
	httpFetcher.MaxBytes = a.cfg.Render.MaxAssetBytes
	fetcher := compositor.MultiFetcher{HTTP: httpFetcher, Files: compositor.FileFetcher{}}
	return compositor.New(fm, fetcher,
		compositor.WithTuning(a.cfg.Tuning),
		compositor.WithFetchTimeout(a.cfg.Render.FetchTimeout),
	), nil
}

// ── render ──

func (a *app) renderCmd() *cobra.Command {
	var (
		p       posterFlags
		output  string
		size    int
		mode    string
		quality int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a poster to PNG or JPEG",
		Example: `  goposter render -t template.json -c content.json -o poster.png
  goposter render -t classic-endorsement --name "Jordan Avery" --title CTO \
    --photo me.jpg --size 540 --mode preview -o preview.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, content, overrides, cleanup, err := p.load(a)
			if err != nil {
				return err
			}
			defer cleanup()

			if size <= 0 {
				size = a.cfg.Render.FinalSize
			}
			comp, err := a.newCompositor()
			if err != nil {
				return err
			}
			res, err := comp.Render(context.Background(), compositor.RenderRequest{
				Template:   tpl,
				Content:    content,
				TargetSize: size,
				Mode:       compositor.Mode(mode),
				Overrides:  overrides,
			})
			if err != nil {
				return err
			}
			for _, d := range res.Degraded {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", d)
			}

			if err := generator.Generate(output, generator.Config{Image: res.Image, Quality: quality}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %s (%dx%d)\n", output, size, size)
			return nil
		},
	}
	p.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "poster.png", "Output file (.png, .jpg)")
	cmd.Flags().IntVarP(&size, "size", "s", 0, "Output side in pixels (default: render.final_size)")
	cmd.Flags().StringVar(&mode, "mode", string(compositor.ModeFinal), "Background resolution: preview or final")
	cmd.Flags().IntVar(&quality, "quality", generator.DefaultJPEGQuality, "JPEG quality 1-100")
	return cmd
}

// ── layout ──

func (a *app) layoutCmd() *cobra.Command {
	var (
		p        posterFlags
		size     int
		estimate bool
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the computed text zones as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, content, overrides, cleanup, err := p.load(a)
			if err != nil {
				return err
			}
			defer cleanup()

			if size <= 0 {
				size = a.cfg.Render.FinalSize
			}
			calc, closeFn, err := a.calculator(estimate)
			if err != nil {
				return err
			}
			defer closeFn()

			zones, err := calc.LayoutWith(tpl, content, size, overrides)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(zones)
		},
	}
	p.register(cmd)
	cmd.Flags().IntVarP(&size, "size", "s", 0, "Output side in pixels (default: render.final_size)")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "Measure with the advance estimate instead of glyph metrics")
	return cmd
}

func (a *app) calculator(estimate bool) (*layout.Calculator, func(), error) {
	if estimate {
		calc := layout.NewCalculator(layout.EstimateMeasurer{})
		calc.Tuning = a.cfg.Tuning
		return calc, func() {}, nil
	}
	fm, err := a.cfg.FontManager()
	if err != nil {
		return nil, nil, err
	}
	faces := layout.NewFaceMeasurer(fm)
	calc := layout.NewCalculator(faces)
	calc.Tuning = a.cfg.Tuning
	return calc, faces.Close, nil
}

// ── check ──

func (a *app) checkCmd() *cobra.Command {
	var (
		p                    posterFlags
		previewSize, finalSz int
		tolerance            int
		estimate             bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the preview and final layouts agree",
		Long: `check lays the poster out at the preview and final sizes and compares every
zone after scaling: origins within the tolerance, identical line breaks, and
proportional font sizes. It exits non-zero on any difference.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, content, overrides, cleanup, err := p.load(a)
			if err != nil {
				return err
			}
			defer cleanup()

			if previewSize <= 0 {
				previewSize = a.cfg.Render.PreviewSize
			}
			if finalSz <= 0 {
				finalSz = a.cfg.Render.FinalSize
			}
			calc, closeFn, err := a.calculator(estimate)
			if err != nil {
				return err
			}
			defer closeFn()

			prev, err := calc.LayoutWith(tpl, content, previewSize, overrides)
			if err != nil {
				return err
			}
			final, err := calc.LayoutWith(tpl, content, finalSz, overrides)
			if err != nil {
				return err
			}

			rep := layout.Compare(prev, previewSize, final, finalSz, tolerance)
			if !rep.Consistent() {
				fmt.Fprintln(cmd.OutOrStdout(), rep.String())
				return fmt.Errorf("%d layout differences between %dpx and %dpx", len(rep.Diffs), previewSize, finalSz)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d zones consistent at %dpx and %dpx\n", len(prev), previewSize, finalSz)
			return nil
		},
	}
	p.register(cmd)
	cmd.Flags().IntVar(&previewSize, "preview", 0, "Preview side (default: render.preview_size)")
	cmd.Flags().IntVar(&finalSz, "final", 0, "Final side (default: render.final_size)")
	cmd.Flags().IntVar(&tolerance, "tolerance", 1, "Allowed origin difference in final pixels")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "Measure with the advance estimate instead of glyph metrics")
	return cmd
}
