// cmd/assistant/ask.go
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"estate-assistant/internal/assistant"
)

var (
	askContext  string
	askProvider string
	askVerbose  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Answer one prompt and print the reply",
	Example: `  assistant ask "Where is the watch?" \
    --context "Current assets: Watch (Collectible) - $10,000 - Location: Vault"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if askProvider != "" && !d.engine.Selector().Registry().Has(askProvider) {
			return fmt.Errorf("%w: %s", assistant.ErrUnknownProvider, askProvider)
		}

		out := d.engine.Attempt(cmd.Context(), assistant.Request{
			Prompt:   strings.Join(args, " "),
			Context:  askContext,
			Provider: askProvider,
		})
		fmt.Fprintln(cmd.OutOrStdout(), out.Reply)
		if askVerbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "source=%s provider=%s category=%s fallback=%s\n",
				out.Source, out.Provider, out.Category, out.Fallback)
		}
		return nil
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered generation providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, err := newSelector(cfg)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCONFIGURED\tDEFAULT")
		for _, p := range selector.Registry().Providers() {
			def := ""
			if p.ID == selector.Current() {
				def = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", p.ID, p.Name, p.Configured, def)
		}
		return tw.Flush()
	},
}

func init() {
	askCmd.Flags().StringVar(&askContext, "context", "", "asset context string")
	askCmd.Flags().StringVarP(&askProvider, "provider", "p", "", "provider for this call only")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "print how the reply was produced")
}
