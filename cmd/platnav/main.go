// Package main provides the platnav CLI: it evaluates a level script,
// generates the platform graph, and reports or persists the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dmaris/platnav/pkg/level"
	"github.com/dmaris/platnav/pkg/navgraph"
	"github.com/dmaris/platnav/pkg/store"
)

var rootCmd = &cobra.Command{
	Use:   "platnav",
	Short: "platnav - platform graph generator for 2D platformer pathfinding",
	Long:  `platnav scans static 2D level geometry, extracts walkable surfaces, and builds a navigable node graph with a spatial index.`,
}

var (
	flagLevel   string
	flagConfig  string
	flagDB      string
	flagDense   bool
	flagVerbose bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a platform graph from a level script",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(flagVerbose)
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg, err := loadConfig(flagConfig)
		if err != nil {
			return err
		}
		cfg.DenseSpacing = cfg.DenseSpacing || flagDense

		source, err := os.ReadFile(flagLevel)
		if err != nil {
			return fmt.Errorf("read level script: %w", err)
		}

		lvl, evalErrs, err := level.NewEngine().Evaluate(string(source))
		if err != nil {
			return fmt.Errorf("evaluate level: %w", err)
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", flagLevel, e.Error())
			}
			return fmt.Errorf("level script has %d error(s)", len(evalErrs))
		}

		w, err := lvl.BuildWorld()
		if err != nil {
			return fmt.Errorf("build world: %w", err)
		}

		gen, err := navgraph.NewGenerator(w, cfg, navgraph.WithLogger(log))
		if err != nil {
			return err
		}
		gen.Generate()

		meta := gen.Meta()
		fmt.Printf("build %s: %d shapes, %d nodes, %d links\n",
			meta.BuildID, lvl.ShapeCount(), meta.NodeCount, meta.LinkCount)

		if flagDB == "" {
			return nil
		}
		db, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer db.Close()
		snap := store.Snapshot{Meta: meta, Nodes: gen.Nodes(), Links: gen.Links()}
		if err := store.Save(db, snap); err != nil {
			return err
		}
		fmt.Printf("saved graph %s to %s\n", meta.BuildID, flagDB)
		return nil
	},
}

// loadConfig reads a YAML config file over the defaults. An empty
// path means defaults only.
func loadConfig(path string) (navgraph.Config, error) {
	cfg := navgraph.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func init() {
	generateCmd.Flags().StringVarP(&flagLevel, "level", "l", "", "level script path (required)")
	generateCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML config path")
	generateCmd.Flags().StringVar(&flagDB, "db", "", "SQLite path to persist the generated graph")
	generateCmd.Flags().BoolVar(&flagDense, "dense", false, "use dense node spacing")
	generateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log generation details")
	generateCmd.MarkFlagRequired("level")
	rootCmd.AddCommand(generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
