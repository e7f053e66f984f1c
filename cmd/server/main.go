package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version can be set during build with -ldflags
var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "malauth",
		Short: "OAuth2 PKCE login and token exchange for MyAnimeList",
		Long: `malauth redirects users to the MyAnimeList consent page and exchanges
the returned authorization code for an access token.`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
