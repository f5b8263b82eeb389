package main

import (
	"encoding/csv"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/frontdoor"
)

const (
	formatJSON = "json"
	formatTSV  = "tsv"
)

func newListCmd(root *rootOptions) *cobra.Command {
	var (
		voteID string
		format string
	)

	cmd := &cobra.Command{
		Use:   "list <portal-url>",
		Short: "List how each legislator voted",
		Long: `List resolves the link and prints every nominal vote. With --format tsv
the output is tab-separated (nome, tipoVoto, partido, uf) with a header row;
ambiguous links print the candidate votes (id, descricao) instead.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatTSV {
				return fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatTSV)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			out, err := gw.Pipeline().ListVotes(cmd.Context(), args[0], voteID)
			if err != nil {
				return err
			}
			if format == formatTSV {
				return writeTSV(cmd, out)
			}
			body, err := frontdoor.ListOutcomeBody(out)
			if err != nil {
				return err
			}
			return writeJSON(cmd, body)
		},
	}

	cmd.Flags().StringVar(&voteID, "vote-id", "", "Use this vote id instead of resolving")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json or tsv")
	return cmd
}

func writeTSV(cmd *cobra.Command, out domain.ListOutcome) error {
	w := csv.NewWriter(cmd.OutOrStdout())
	w.Comma = '\t'

	switch o := out.(type) {
	case *domain.VoteListResult:
		_ = w.Write([]string{"nome", "tipoVoto", "partido", "uf"})
		for _, r := range o.Rows {
			_ = w.Write([]string{r.Name, r.VoteChoice, r.Party, r.State})
		}
		if o.Note != "" {
			cmd.PrintErrln(o.Note)
		}
		if o.Truncated {
			cmd.PrintErrln("warning: listing truncated at the page limit")
		}
	case domain.NeedsChoice:
		cmd.PrintErrln("several votes match; re-run with --vote-id set to one of:")
		_ = w.Write([]string{"id", "descricao"})
		for _, opt := range o.Options {
			desc := ""
			if opt.Description != nil {
				desc = *opt.Description
			}
			_ = w.Write([]string{opt.ID, desc})
		}
	default:
		return fmt.Errorf("unhandled list outcome %T", out)
	}

	w.Flush()
	return w.Error()
}
