package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"NewsDesk/internal/app"
	"NewsDesk/internal/config"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/usecase"
)

type cli struct {
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "newsdesk",
		Short: "Guardian summarization newsroom",
		Long: `newsdesk pulls articles from the Guardian content API, rewrites them
with a local Ollama model and publishes the results as MDX files.

Examples:
  newsdesk serve                     # HTTP API, queue worker and scheduler
  newsdesk ingest --days 3           # fetch the last three days
  newsdesk process world/2025/a ...  # summarize pending articles
  newsdesk publish 42                # publish summary 42`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default $NEWSDESK_CONFIG)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.serveCmd(),
		c.ingestCmd(),
		c.processCmd(),
		c.publishCmd(),
		c.purgeCmd(),
		c.statsCmd(),
		c.metricsCmd(),
		c.categoriesCmd(),
	)
	return root
}

// withApp loads configuration, builds the application and closes it after fn.
func (c *cli) withApp(ctx context.Context, fn func(*app.Application) error) error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}

	application, err := app.New(ctx, cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format))
	if err != nil {
		return err
	}
	defer application.Close()
	return fn(application)
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the processing queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				return a.Run(cmd.Context())
			})
		},
	}
}

func (c *cli) ingestCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch new articles for the last N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				report, err := a.Ingestor.Ingest(cmd.Context(), days)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", usecase.DefaultIngestDays, "days to look back (1-30)")
	return cmd
}

func (c *cli) processCmd() *cobra.Command {
	var deleteAfter bool
	cmd := &cobra.Command{
		Use:   "process ID...",
		Short: "Summarize pending articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				return a.WithWorker(cmd.Context(), func(ctx context.Context) error {
					result, err := a.Pipeline.ProcessBatch(ctx, args, deleteAfter)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), result)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&deleteAfter, "delete", false, "remove each article once summarized")
	return cmd
}

func (c *cli) publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish SUMMARY_ID",
		Short: "Publish a summary as an MDX article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSummaryID(args[0])
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				article, err := a.Publisher.Publish(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "published %s.mdx\n", article.Slug)
				return nil
			})
		},
	}
}

func (c *cli) purgeCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete pending articles published in [from, to]",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := parseRange(from, to)
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				n, err := a.Maintenance.PurgeRange(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d articles\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day inclusive, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				counts, err := a.Maintenance.Counts(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), counts)
			})
		},
	}
}

func (c *cli) metricsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Aggregate recent processing durations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				m, err := a.Maintenance.Metrics(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "most recent runs to include (0 = all)")
	return cmd
}

func (c *cli) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Generate categories for published articles that lack one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				out := cmd.OutOrStdout()
				return a.Catalogue.Backfill(cmd.Context(), func(evt usecase.BackfillEvent) {
					switch evt.Type {
					case usecase.EventProcessed:
						fmt.Fprintf(out, "[%d/%d] %s -> %s (%.1fs)\n", evt.Current, evt.Total, evt.Filename, evt.Category, evt.Duration)
					case usecase.EventError:
						fmt.Fprintf(out, "[%d/%d] %s failed: %s\n", evt.Current, evt.Total, evt.Filename, evt.Error)
					case usecase.EventStart, usecase.EventComplete:
						fmt.Fprintln(out, evt.Message)
					}
				})
			})
		},
	}
}

func parseSummaryID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid summary id %q", raw)
	}
	return id, nil
}

// parseRange turns two inclusive days into the half-open interval [from, to+1d).
func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	return start, end.AddDate(0, 0, 1), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
