package main

import "github.com/spf13/cobra"

// draftFlags are the form fields settable from the command line.
type draftFlags struct {
	targetURI string
	channelID string
	content   string
	metadata  string
}

func (d *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&d.content, "content", "c", "", "Comment text.")
	cmd.Flags().StringVarP(&d.targetURI, "target-uri", "t", "", "URL the comment is about.")
	cmd.Flags().StringVar(&d.channelID, "channel", "", "Channel id (default: home or the first channel).")
	cmd.Flags().StringVarP(&d.metadata, "metadata", "m", "",
		"Metadata as key:value:type[,...]. Types: string, uint256, int256, address, bool, bytes, bytes32.")
}
