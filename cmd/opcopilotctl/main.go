// Command opcopilotctl inspects the fixture files served by the API.
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/fixtures"
	"github.com/opcopilot/opcopilot/internal/timeline"
)

type options struct {
	dataDir       string
	demoFile      string
	templatesFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "opcopilotctl",
		Short:         "Inspect OPCOPILOT fixture data",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data", "data", "fixture directory")
	root.PersistentFlags().StringVar(&opts.demoFile, "demo", "demo_data.json", "demo data file name")
	root.PersistentFlags().StringVar(&opts.templatesFile, "templates", "templates_phases.json", "phase templates file name")

	root.AddCommand(newCheckCmd(opts), newTimelineCmd(opts), newHashCmd())
	return root
}

func (o *options) loader() *fixtures.Loader {
	return fixtures.NewLoader(o.dataDir, o.demoFile, o.templatesFile, nil)
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the fixture files and report fallbacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := opts.loader()
			out := cmd.OutOrStdout()
			demo := l.Demo()
			templates := l.Templates()

			fmt.Fprintf(out, "operations: %d\n", len(demo.Operations))
			fmt.Fprintf(out, "phase lists: %d\n", len(demo.Phases))
			fmt.Fprintf(out, "alerts: %d\n", len(demo.Alerts))
			types := make([]string, 0, len(templates.Types))
			for t := range templates.Types {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Fprintf(out, "template %s: %d phases\n", t, len(templates.Types[t].Phases))
			}

			failed := false
			if demo.Skipped > 0 {
				fmt.Fprintf(out, "skipped records: %d\n", demo.Skipped)
				failed = true
			}
			for _, notice := range []string{demo.Notice, templates.Notice} {
				if notice != "" {
					fmt.Fprintln(out, "fallback:", notice)
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("fixtures in %s are incomplete", opts.dataDir)
			}
			return nil
		},
	}
}

func newTimelineCmd(opts *options) *cobra.Command {
	var anchor string
	cmd := &cobra.Command{
		Use:   "timeline <operation-id>",
		Short: "Print the normalized phases of a demo operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now().UTC().Truncate(24 * time.Hour)
			if anchor != "" {
				parsed, ok := timeline.ParseDate(anchor)
				if !ok {
					return fmt.Errorf("invalid anchor date %q", anchor)
				}
				start = parsed
			}

			demo := opts.loader().Demo()
			name := args[0]
			for _, rec := range demo.Operations {
				if rec.ID.String() == args[0] {
					name = rec.Name
				}
			}
			phases := timeline.Normalize(demo.Phases[domain.OperationKey(args[0])], start)
			layout := timeline.Build(name, phases)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, layout.Title)
			if layout.Empty() {
				fmt.Fprintln(out, layout.Message)
				return nil
			}
			for _, node := range layout.Nodes {
				fmt.Fprintf(out, "%s  %s  %s -> %s  %s\n",
					node.Label,
					node.Phase.Name,
					node.Phase.Start.Format("2006-01-02"),
					node.Phase.End.Format("2006-01-02"),
					node.Phase.Status,
				)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&anchor, "anchor", "", "anchor date for phases without dates (YYYY-MM-DD)")
	return cmd
}

func newHashCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 10, "bcrypt cost")
	return cmd
}
