package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag  string
		apiFlag     string
		tokenFlag   string
		actorFlag   string
		roleFlag    string
		companyFlag string
		jsonFlag    bool
	)

	ctx := newCommandContext(&configFlag, &apiFlag, &tokenFlag, &actorFlag, &roleFlag, &companyFlag)
	ctx.jsonFlag = &jsonFlag

	rootCmd := &cobra.Command{
		Use:           "hireline",
		Short:         "Hireline applicant tracking CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "Daemon API address (host:port or URL)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "API bearer token")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "as", "", "Acting user identifier")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Acting user role (candidate, recruiter, hiring_manager)")
	rootCmd.PersistentFlags().StringVar(&companyFlag, "company", "", "Acting user's company identifier")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Emit JSON instead of tables")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newApplyCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newAdvanceCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
