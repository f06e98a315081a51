package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stake-plus/ecp-share/src/config"
	"github.com/stake-plus/ecp-share/src/indexer"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels comments can be posted to, default first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustLoad()
		dir := indexer.NewDirectory(indexer.NewClient(cfg.IndexerURL, nil, logger), cfg.ChainID, logger)
		list, err := dir.Load(cmd.Context())
		if err != nil {
			return err
		}

		def := indexer.DefaultChannelID(list)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\tID\tNAME\tHOOK")
		for _, ch := range list {
			mark := ""
			if ch.ID == def {
				mark = "*"
			}
			hook := "-"
			if addr, ok := ch.HookAddress(); ok {
				hook = addr.Hex()
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, ch.ID, ch.Name, hook)
		}
		return tw.Flush()
	},
}
