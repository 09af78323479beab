package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baiirun/chew/internal/config"
	"github.com/baiirun/chew/internal/db"
	"github.com/baiirun/chew/internal/model"
	"github.com/baiirun/chew/internal/parse"
	"github.com/baiirun/chew/internal/render"
	"github.com/baiirun/chew/internal/tui"
)

// sampleLines feed the parse harness when it gets no argument.
var sampleLines = []string{
	"cantoloupe",
	"grapes 100",
	"granola bars x2",
	"rice 2x 400",
	"milk 100 2x",
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "chew",
		Short: "Log what you eat and keep a running calorie total",
		Long: `A food log for the terminal. Type lines like "rice 2x 400" and chew pulls out
the count (2x) and calories (400), keeping a total over everything not yet done.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file (default ~/.config/chew/config.yaml)")
	pf.StringVar(&o.backend, "store", "", "store backend: sqlite or json")
	pf.StringVar(&o.path, "path", "", "database file, or directory for the json store")
	pf.StringVarP(&o.collection, "collection", "c", "", "collection name (default \"todos\")")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&o.json, "json", false, "output as JSON")
	pf.BoolVar(&o.plain, "plain", false, "disable colors and styling")

	root.AddCommand(
		newAddCmd(o),
		newListCmd(o),
		newDoneCmd(o),
		newToggleAllCmd(o),
		newEditCmd(o),
		newRmCmd(o),
		newClearCmd(o),
		newTotalCmd(o),
		newParseCmd(o),
		newCollectionsCmd(o),
		newTUICmd(o),
	)
	return root
}

// withApp opens the configured collection around fn.
func withApp(o *options, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := o.open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.close(); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, a, args)
	}
}

func newAddCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <line...>",
		Short: "Log a line such as \"rice 2x 400\"",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			item, err := a.col.Create(strings.Join(args, " "))
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("Added %s (%d): %s", item.Food, item.Order, item.ID)
			return a.report(msg, result{Item: &item})
		}),
	}
}

func newListCmd(o *options) *cobra.Command {
	var onlyDone, onlyPending bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries and the total",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			if onlyDone && onlyPending {
				return fmt.Errorf("--done and --pending are mutually exclusive")
			}
			items := a.col.Items()
			switch {
			case onlyDone:
				items = a.col.Done()
			case onlyPending:
				items = a.col.Remaining()
			}
			if a.json {
				if items == nil {
					items = []model.Item{}
				}
				return a.writeJSON(listing{Collection: a.cfg.Store.Collection, Items: items, Stats: a.col.Stats()})
			}
			a.printer.List(a.cfg.Store.Collection, items, a.col.Stats())
			return nil
		}),
	}
	cmd.Flags().BoolVar(&onlyDone, "done", false, "only entries marked done")
	cmd.Flags().BoolVar(&onlyPending, "pending", false, "only entries not done")
	return cmd
}

func newDoneCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id|order>",
		Short: "Toggle an entry done",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			item, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			item, err = a.col.Toggle(item.ID)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("Reopened %s", item.Food)
			if item.Done {
				msg = fmt.Sprintf("Done %s", item.Food)
			}
			return a.report(msg, result{Item: &item})
		}),
	}
}

func newToggleAllCmd(o *options) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "toggle-all",
		Short: "Mark every entry done (or not done with --clear)",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.col.ToggleAll(!undo); err != nil {
				return err
			}
			msg := "Marked all done"
			if undo {
				msg = "Marked all not done"
			}
			return a.report(msg, result{})
		}),
	}
	cmd.Flags().BoolVar(&undo, "clear", false, "mark every entry not done")
	return cmd
}

func newEditCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id|order> [title...]",
		Short: "Replace an entry's title (an empty title deletes it)",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			item, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			title := strings.Join(args[1:], " ")
			if err := a.col.SetTitle(item.ID, title); err != nil {
				return err
			}
			if strings.TrimSpace(title) == "" {
				return a.report(fmt.Sprintf("Deleted %s", item.ID), result{})
			}
			item, _ = a.col.Lookup(item.ID)
			return a.report(fmt.Sprintf("Updated %s", item.ID), result{Item: &item})
		}),
	}
}

func newRmCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id|order>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			item, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			if err := a.col.Destroy(item.ID); err != nil {
				return err
			}
			return a.report(fmt.Sprintf("Deleted %s", item.ID), result{Item: &item})
		}),
	}
}

func newClearCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every done entry",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			n, err := a.col.ClearCompleted()
			if err != nil {
				return err
			}
			return a.report(fmt.Sprintf("Cleared %d done", n), result{Cleared: &n})
		}),
	}
}

func newTotalCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Print the calorie total of entries not done",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			total := a.col.Total()
			if a.json {
				return a.writeJSON(map[string]int{"total": total})
			}
			_, err := fmt.Fprintln(a.out, render.Calories(total))
			return err
		}),
	}
}

// parsed is the JSON shape of one parse harness line.
type parsed struct {
	Line  string `json:"line"`
	Count string `json:"count"`
	Cal   string `json:"cal,omitempty"`
	Food  string `json:"food"`
}

// prefixes expands s into its growing prefixes, one per character.
func prefixes(s string) []string {
	r := []rune(s)
	lines := make([]string, 0, len(r))
	for i := 1; i <= len(r); i++ {
		lines = append(lines, string(r[:i]))
	}
	return lines
}

func newParseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [text]",
		Short: "Show how lines are split into count, calories and food",
		Long: `With no argument, parse the built-in sample lines. With an argument, parse
every prefix of it, one character longer each time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := sampleLines
			if len(args) > 0 {
				lines = prefixes(strings.Join(args, " "))
			}

			out := cmd.OutOrStdout()
			if o.json {
				rows := make([]parsed, 0, len(lines))
				for _, line := range lines {
					e := parse.Extract(line)
					row := parsed{Line: line, Count: e.CountValue(), Food: e.Food}
					if e.Cal != nil {
						row.Cal = e.Cal.Value
					}
					rows = append(rows, row)
				}
				return (&app{out: out}).writeJSON(rows)
			}

			p := render.New(out, o.plain)
			for _, line := range lines {
				p.Entry(line, parse.Extract(line))
			}
			return nil
		},
	}
}

func newCollectionsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List collections in the database with their totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Store.Backend != config.BackendSQLite {
				return fmt.Errorf("collections needs the %s store (configured: %s)", config.BackendSQLite, cfg.Store.Backend)
			}

			database, err := db.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			if err := database.Init(); err != nil {
				return err
			}

			names, err := database.ListCollections()
			if err != nil {
				return err
			}
			summaries := make([]db.Summary, 0, len(names))
			for _, name := range names {
				s, err := database.CollectionSummary(name)
				if err != nil {
					return err
				}
				summaries = append(summaries, *s)
			}

			out := cmd.OutOrStdout()
			if o.json {
				return (&app{out: out}).writeJSON(summaries)
			}
			if len(summaries) == 0 {
				_, err := fmt.Fprintln(out, "No collections yet. Add an entry with 'chew add'.")
				return err
			}
			render.New(out, o.plain).Collections(summaries)
			return nil
		},
	}
}

func newTUICmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive food log",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			return tui.Run(a.col, a.cfg.Store.Collection)
		}),
	}
}
