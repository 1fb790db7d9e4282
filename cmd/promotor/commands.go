package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/promotor/internal/config"
	"github.com/kingrea/promotor/internal/ids"
	"github.com/kingrea/promotor/internal/logbook"
	"github.com/kingrea/promotor/internal/logging"
	"github.com/kingrea/promotor/internal/promote"
	"github.com/kingrea/promotor/internal/prompt"
	"github.com/kingrea/promotor/internal/proposal"
	"github.com/kingrea/promotor/internal/report"
	"github.com/kingrea/promotor/internal/store"
)

// envDir overrides the project root when --dir is not given.
const envDir = "PROMOTOR_DIR"

// app carries what every command needs once the root has resolved the
// project directory.
type app struct {
	dir     string
	verbose bool

	cfg *config.Config
	log *logging.Logger

	// prompter and now are replaced in tests.
	prompter prompt.Prompter
	now      func() time.Time
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "promotor",
		Short: "Keep the proposal pool and write the Promotor's Report",
		Long: `promotor keeps a pool of pending proposals, distributes a selection of
them by giving each a permanent id, and writes the Promotor's Report.

Run "promotor init --seed <id>" once in a new project.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.dir, "dir", "", "project root (default $"+envDir+" or the working directory)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newGenerateCmd(a),
		newListCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	dir, err := resolveDir(a.dir)
	if err != nil {
		return err
	}
	a.dir = dir
	if cmd.Name() == "init" {
		if a.cfg, err = config.InitDir(dir); err != nil {
			return err
		}
	} else if a.cfg, err = config.NewConfig(dir); err != nil {
		return err
	}
	if a.log == nil {
		// An uninitialised project gets no log file; the command itself
		// reports what is missing.
		if _, statErr := os.Stat(a.cfg.StateProjectDir); statErr != nil {
			a.log = logging.Nop()
		} else if a.log, err = logging.New(a.cfg.LogsDir(), a.verbose); err != nil {
			return err
		}
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.log.Debug("command start", zap.String("command", cmd.CommandPath()), zap.String("dir", dir))
	return nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Close()
	}
}

func (a *app) prompterFor(cmd *cobra.Command) prompt.Prompter {
	if a.prompter != nil {
		return a.prompter
	}
	return prompt.New(os.Stdin, cmd.OutOrStdout())
}

func (a *app) numbering() promote.Numbering {
	return promote.Numbering(a.cfg.Numbering())
}

func resolveDir(flag string) (string, error) {
	dir := flag
	if dir == "" {
		dir = os.Getenv(envDir)
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve project dir: %w", err)
		}
		dir = cwd
	}
	return filepath.Abs(dir)
}

func newInitCmd(a *app) *cobra.Command {
	var seed int
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the pool, archive and report directories",
		Long: `Creates pool/, proposals/, reports/ and .promotor/config.yaml in the
project root. Existing files are left alone.

--seed records the first permanent id to hand out while the archive is
empty. It is required before the first distribution of a new archive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				if err := a.cfg.SetSeed(seed); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialised %s\n", a.cfg.ProjectDir)
			if a.cfg.SeedID() > 0 {
				fmt.Fprintf(out, "Seed id: %s\n", ids.Format(a.cfg.SeedID()))
			}
			a.log.Info("project initialised", zap.Int("seed", a.cfg.SeedID()))
			return nil
		},
	}
	cmd.Flags().IntVar(&seed, "seed", 0, "first permanent id for an empty archive")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add",
		Aliases: []string{"a"},
		Short:   "Add a proposal to the pool",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool := store.NewFilePool(a.cfg.PoolDir())
			p, err := promote.Intake(a.prompterFor(cmd), pool, a.numbering())
			if err != nil {
				return err
			}
			a.log.Info("proposal pooled", zap.Int("pool_number", p.Number), zap.String("name", p.Name))
			fmt.Fprintf(cmd.OutOrStdout(), "Added to pool as %d\n", p.Number)
			return nil
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Distribute proposals and write the Promotor's Report",
		Long: `Lists the pool, asks which proposals to distribute, assigns their
permanent ids, moves them into the archive and writes the report.

The selector is a comma-separated list of numbers and inclusive ranges,
for example "1,4-6". An empty selector distributes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ledger, err := logbook.New(a.cfg.LedgerPath())
			if err != nil {
				return err
			}
			driver := promote.New(
				store.NewFilePool(a.cfg.PoolDir()),
				store.NewFileArchive(a.cfg.ProposalsDir(), a.cfg.BucketDepth()),
				a.prompterFor(cmd),
				a.cfg.ReportsDir(),
				promote.WithLogger(a.log.Logger),
				promote.WithLedger(ledger),
				promote.WithNumbering(a.numbering()),
				promote.WithSeed(a.cfg.SeedID()),
				promote.WithClock(a.now),
				promote.WithOutput(out),
			)
			res, err := driver.Run()
			if err != nil {
				if len(res.Distributed) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Already archived before the failure: %s\n", labels(res.Distributed))
				}
				return err
			}
			fmt.Fprintln(out, report.Highlight(res.Report))
			fmt.Fprintf(out, "Report written to %s\n", res.Path)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the pool and the next id",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			pool, err := store.NewFilePool(a.cfg.PoolDir()).List()
			if err != nil {
				return err
			}
			fixed := a.numbering() == promote.NumberingFixed
			for _, p := range pool {
				key := p.Number
				if fixed {
					key = p.ID
				}
				fmt.Fprintln(out, key, p.Name)
			}
			if len(pool) == 0 {
				fmt.Fprintln(out, "The pool is empty.")
			}
			archive := store.NewFileArchive(a.cfg.ProposalsDir(), a.cfg.BucketDepth())
			highest, ok, err := archive.MaxID()
			if err != nil {
				return err
			}
			printIDs(out, highest, ok, a.cfg.SeedID(), fixed)
			return nil
		},
	}
}

func printIDs(out io.Writer, highest int, ok bool, seed int, fixed bool) {
	if ok {
		fmt.Fprintf(out, "Highest archived id: %s\n", ids.Format(highest))
	} else {
		fmt.Fprintln(out, "Highest archived id: none")
	}
	if fixed {
		return
	}
	next, err := ids.NextID(highest, ok, seed)
	if errors.Is(err, ids.ErrNoSeed) {
		fmt.Fprintln(out, "Next id: unset (run `promotor init --seed <id>`)")
		return
	}
	fmt.Fprintf(out, "Next id: %s\n", ids.Format(next))
}

func newHistoryCmd(a *app) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent entries of the distribution ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := logbook.New(a.cfg.LedgerPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tail, total := ledger.Tail(lines)
			if total == 0 {
				fmt.Fprintln(out, "No distributions recorded yet.")
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if len(tail) < total {
				fmt.Fprintf(out, "(%d of %d entries)\n", len(tail), total)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "number of entries to show")
	return cmd
}

func labels(ps []proposal.Proposal) string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, ids.Format(p.ID))
	}
	return strings.Join(out, ", ")
}
