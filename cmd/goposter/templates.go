// templates.go — validate, migrate and init commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xob0t/GoPoster/pkg/config"
	"github.com/xob0t/GoPoster/pkg/generator"
	"github.com/xob0t/GoPoster/pkg/template"
)

// ── validate ──

func (a *app) validateCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "validate <template>...",
		Short: "Validate template JSON files or .gsposter bundles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				tpl, cleanup, err := a.loadTemplate(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				cleanup()
				if quiet {
					fmt.Fprintf(out, "OK   %s\n", path)
					continue
				}
				fmt.Fprint(out, template.Describe(&tpl))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d templates invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print one line per template instead of the zone summary")
	return cmd
}

// ── migrate ──

func (a *app) migrateCmd() *cobra.Command {
	var (
		output string
		style  string
	)
	cmd := &cobra.Command{
		Use:   "migrate <legacy.json>",
		Short: "Rewrite a legacy template in the canonical schema",
		Long: `migrate converts a schema 1 (1080 canvas, fractional font sizes) or schema 2
(1080 canvas, pixel font sizes) record to schema 3: a 2000 canvas, pixel font
sizes and x/y/width/height text zones. Records that never declared a layout
style get --style, or templates.default_layout_style from the config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			if err := template.ValidateJSON(data); err != nil {
				return err
			}
			var raw template.Template
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("decode template: %w", err)
			}

			opts := a.cfg.NormalizeOptions()
			if style != "" {
				opts.LayoutStyle = template.LayoutStyle(style)
			}
			tpl, err := template.Normalize(raw, opts)
			if err != nil {
				return err
			}
			if err := template.Validate(&tpl); err != nil {
				return err
			}

			out, err := json.MarshalIndent(tpl, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Migrated %s (schema %d) -> %s\n", args[0], raw.SchemaVersion, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&style, "style", "", "Layout style for records without one: photo-center, photo-above or zone")
	return cmd
}

// ── init ──

// Sample image colours written by init.
const (
	sampleBackground = "#1a237e"
	samplePhoto      = "#ffb300"
)

func (a *app) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a sample template, content, images and config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			tplJSON, contentJSON := template.GetExampleJSON()
			files := []struct {
				name  string
				write func(path string) error
			}{
				{"template.json", writeText(tplJSON)},
				{"content.json", writeText(contentJSON)},
				{"background.png", writeSolid(2000, sampleBackground)},
				{"photo.png", writeSolid(600, samplePhoto)},
				{config.DefaultFile, func(path string) error {
					cfg := config.Defaults()
					cfg.Templates.Dir = "."
					return config.Save(path, cfg)
				}},
			}

			var created []string
			for _, f := range files {
				path := filepath.Join(dir, f.name)
				if _, err := os.Stat(path); err == nil && !force {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if err != nil && !errors.Is(err, os.ErrNotExist) {
					return err
				}
				if err := f.write(path); err != nil {
					return fmt.Errorf("write %s: %w", f.name, err)
				}
				created = append(created, path)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created: %v\n", created)
			fmt.Fprintf(out, "Run: goposter render -t %s -c %s -o poster.png\n",
				filepath.Join(dir, "template.json"), filepath.Join(dir, "content.json"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	return cmd
}

func writeText(s string) func(string) error {
	return func(path string) error { return os.WriteFile(path, []byte(s+"\n"), 0o644) }
}

func writeSolid(side int, color string) func(string) error {
	return func(path string) error {
		return generator.Generate(path, generator.Config{Width: side, Height: side, Color: color})
	}
}
