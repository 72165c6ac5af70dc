package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/collection"
	"github.com/syssam/denorm/convention"
	"github.com/syssam/denorm/internal/config"
	"github.com/syssam/denorm/reference"
	"github.com/syssam/denorm/source"
)

type populateFunc func(int, denorm.Graph, any, ...denorm.Option) (any, error)

var populators = map[string]populateFunc{
	config.ModeConvention: convention.Populate,
	config.ModeReference:  reference.Populate,
}

func populateCmd() *cobra.Command {
	var (
		src      sourceFlags
		mode     string
		depth    int
		strategy string
		output   string
		coll     string
		id       string
		watch    bool
		stats    bool
	)

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Populate an entity, or a whole collection, and print the result",
		Example: `  denorm populate --graph graph.json --collection people --id person-1 --depth 2
  denorm populate --driver sqlite --dsn app.db --table people --table stories \
      --collection stories --mode convention --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src.apply(cmd, &cfg.Source)
			fs := cmd.Flags()
			if fs.Changed("mode") {
				cfg.Populate.Mode = mode
			}
			if fs.Changed("depth") {
				cfg.Populate.Depth = depth
			}
			if fs.Changed("strategy") {
				cfg.Populate.Strategy = strategy
			}
			if fs.Changed("output") {
				cfg.Populate.Output = output
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if coll == "" {
				return fmt.Errorf("populate: --collection is required")
			}
			if watch && cfg.Source.Graph == "" {
				return fmt.Errorf("populate: --watch needs --graph")
			}

			logger := newLogger(cmd.ErrOrStderr())
			var st *denorm.Stats
			if stats {
				st = &denorm.Stats{}
			}
			r, err := newRenderer(cfg.Populate, logger, st)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			g, err := loadGraph(ctx, cfg.Source)
			if err != nil {
				return fmt.Errorf("populate: %w", err)
			}
			if err := r.render(cmd.OutOrStdout(), cmd.ErrOrStderr(), g, coll, id); err != nil {
				return fmt.Errorf("populate: %w", err)
			}
			if !watch {
				return nil
			}

			logger.Info("watching graph file", "path", cfg.Source.Graph)
			return source.Watch(ctx, cfg.Source.Graph, func(g denorm.Graph, err error) {
				if err != nil {
					logger.Error("reloading graph", "error", err)
					return
				}
				if err := r.render(cmd.OutOrStdout(), cmd.ErrOrStderr(), g, coll, id); err != nil {
					logger.Error("populating graph", "error", err)
				}
			}, logger)
		},
	}

	src.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&mode, "mode", config.ModeConvention, "reference mode: convention or reference")
	fs.IntVar(&depth, "depth", config.DefaultDepth, "number of reference hops to resolve")
	fs.StringVar(&strategy, "strategy", denorm.Lazy.String(), "evaluation strategy: lazy or eager")
	fs.StringVarP(&output, "output", "o", string(source.JSON), "output format: json, yaml or msgpack")
	fs.StringVar(&coll, "collection", "", "collection holding the root entity")
	fs.StringVar(&id, "id", "", "id of the root entity (default: the whole collection)")
	fs.BoolVar(&watch, "watch", false, "re-run whenever the graph file changes")
	fs.BoolVar(&stats, "stats", false, "print lookup statistics to stderr")

	return cmd
}

// renderer populates a root taken from a graph and writes the result.
type renderer struct {
	populate populateFunc
	depth    int
	format   source.Format
	opts     []denorm.Option
	stats    *denorm.Stats
}

func newRenderer(c config.PopulateConfig, logger *slog.Logger, st *denorm.Stats) (*renderer, error) {
	strategy, err := denorm.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}
	format, err := source.ParseFormat(c.Output)
	if err != nil {
		return nil, err
	}
	return &renderer{
		populate: populators[c.Mode],
		depth:    c.Depth,
		format:   format,
		opts: []denorm.Option{
			denorm.WithStrategy(strategy),
			denorm.WithLogger(logger),
			denorm.WithStats(st),
		},
		stats: st,
	}, nil
}

func (r *renderer) render(out, errOut io.Writer, g denorm.Graph, coll, id string) error {
	root, err := pickRoot(g, coll, id)
	if err != nil {
		return err
	}
	r.stats.Reset()
	v, err := r.populate(r.depth, g, root, r.opts...)
	if err != nil {
		return err
	}
	if err := source.Encode(out, r.format, v); err != nil {
		return err
	}
	if r.stats != nil {
		fmt.Fprintln(errOut, r.stats.Snapshot())
	}
	return nil
}

// pickRoot returns the entity coll[id], or the whole collection when id is
// empty. Numeric ids are tried as numbers when no string id matches.
func pickRoot(g denorm.Graph, coll, id string) (any, error) {
	c, ok := g[coll]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q (have %v)", coll, g.Names())
	}
	if id == "" {
		return c, nil
	}
	e, err := collection.Lookup(c, id)
	if denorm.IsNotFound(err) {
		if n, ok := parseNumber(id); ok {
			e, err = collection.Lookup(c, n)
		}
	}
	if err != nil {
		if denorm.IsNotFound(err) {
			return nil, denorm.NewNotFoundError(coll, id)
		}
		return nil, err
	}
	return e, nil
}

// parseNumber parses id as an integer when it is one, so large ids keep
// every digit, and as a float otherwise.
func parseNumber(id string) (any, bool) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n, true
	}
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return n, true
	}
	if n, err := strconv.ParseFloat(id, 64); err == nil {
		return n, true
	}
	return nil, false
}
