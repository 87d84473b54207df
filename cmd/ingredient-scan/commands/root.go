// Package commands implements the ingredient-scan command line.
package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ingredient-scanner/cmd/ingredient-scan/ui"
	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/config"
	"ingredient-scanner/internal/logging"
)

// globals holds the persistent flags and what PersistentPreRunE builds from
// them.
type globals struct {
	cfgFile string
	verbose bool
	noColor bool
	store   string

	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "ingredient-scan",
		Short: "Scan ingredient lists for suspicious and prohibited ingredients",
		Long: `ingredient-scan recognizes the text in a photo of a product's ingredient
list and reports every phrase found on your suspicious and prohibited lists.
It can also manage those lists and serve the same functionality over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.init()
		},
	}

	root.PersistentFlags().StringVarP(&g.cfgFile, "config", "c", "", "config file path (YAML)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&g.store, "store", "", "word list store: file, memory, redis or postgres")

	root.AddCommand(
		newScanCmd(g),
		newListsCmd(g),
		newServeCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (g *globals) init() error {
	ui.Init(g.noColor)

	cfg, err := config.Load(g.cfgFile)
	if err != nil {
		return err
	}
	if g.store != "" {
		cfg.Store.Driver = g.store
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}
	g.cfg = cfg
	g.logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "ingredient-scan"})
	return nil
}

func (g *globals) runtime(ctx context.Context) (*app.Runtime, error) {
	rt, err := app.NewRuntime(ctx, g.cfg, g.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return rt, nil
}
