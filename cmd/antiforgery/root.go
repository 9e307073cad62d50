package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "antiforgery",
		Short: "Request forgery protection toolkit",
		Long: `Serve a demo application protected against cross-site request forgery,
or compute authenticity tokens by hand when debugging a deployment.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newDigestsCmd())
	return root
}
