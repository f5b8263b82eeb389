package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/rollcall-gateway/internal/frontdoor"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var voteID string

	cmd := &cobra.Command{
		Use:   "resolve <portal-url>",
		Short: "Resolve a portal link to a single vote id",
		Long: `Resolve prints {"idVotacao", "titulo"} for the vote behind the link, or
{"needChoice": true, "options": [...]} when several votes could match; pick
one and re-run with --vote-id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			res, err := gw.Pipeline().ResolveVote(cmd.Context(), args[0], voteID)
			if err != nil {
				return err
			}
			body, err := frontdoor.ResolutionBody(res)
			if err != nil {
				return err
			}
			return writeJSON(cmd, body)
		},
	}

	cmd.Flags().StringVar(&voteID, "vote-id", "", "Use this vote id instead of resolving")
	return cmd
}

func writeJSON(cmd *cobra.Command, body any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}
