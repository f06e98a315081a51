package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/prefill"
)

var (
	shareBaseURL string
	shareDraft   draftFlags
)

var shareLinkCmd = &cobra.Command{
	Use:   "share-link",
	Short: "Print a URL that opens the web form prefilled with a draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := comments.Draft{
			TargetURI: shareDraft.targetURI,
			ChannelID: shareDraft.channelID,
			Content:   shareDraft.content,
			Metadata:  prefill.ParseMetadata(shareDraft.metadata),
		}
		if dups := comments.DuplicateKeys(d.Metadata); len(dups) > 0 {
			logger.Printf("share-link: duplicate metadata keys at %v", dups)
		}
		fmt.Fprintln(cmd.OutOrStdout(), prefill.ShareURL(shareBaseURL, d))
		return nil
	},
}

func init() {
	shareLinkCmd.Flags().StringVar(&shareBaseURL, "base-url", "https://share.ethcomments.xyz/",
		"Address of the share form.")
	shareDraft.register(shareLinkCmd)
}
