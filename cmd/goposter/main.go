// GoPoster — Personalized poster composition.
//
// Usage:
//
//	goposter render --template <path|id> --content <path> -o <file> [options]
//	goposter layout --template <path|id> --content <path> [--size N]
//	goposter check --template <path|id> --content <path>
//	goposter validate <template>...
//	goposter migrate <legacy.json> [-o out.json] [--style photo-center]
//	goposter init [dir]
//	goposter serve [--addr :8080]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xob0t/GoPoster/pkg/config"
	"github.com/xob0t/GoPoster/pkg/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// app carries what every subcommand shares: the loaded configuration.
type app struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "goposter",
		Short: "Compose personalized posters from templates",
		Long: `goposter renders square posters from a template (background image plus
photo and text zones), a photo and two text fields: a name and a title.

The same layout code sizes and wraps the text for every output size, so a
540px preview and a 1080px final poster always agree.

TYPICAL WORKFLOW:
  1. goposter init demo                   # sample template, content and images
  2. goposter validate demo/template.json # check the template
  3. goposter render --template demo/template.json \
       --content demo/content.json -o poster.png
  4. goposter serve                       # HTTP API over a templates directory`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: $GOPOSTER_CONFIG or ./goposter.yaml)")

	root.AddCommand(
		a.renderCmd(),
		a.layoutCmd(),
		a.checkCmd(),
		a.validateCmd(),
		a.migrateCmd(),
		a.initCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logging.Init(cfg.Logging)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "goposter %s\n", Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
