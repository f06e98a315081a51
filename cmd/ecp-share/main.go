// Command ecp-share posts comments to the Ethereum Comments Protocol from the
// terminal and builds share links for the web form.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// Flag variables shared by every command.
var (
	verbose bool
	logger  = log.New(os.Stderr, "", 0)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ecp-share",
	Short:         "Post and share comments on the Ethereum Comments Protocol",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetFlags(log.LstdFlags)
		} else {
			logger.SetOutput(io.Discard)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every step to stderr.")
	rootCmd.AddCommand(postCmd, shareLinkCmd, channelsCmd)
}
