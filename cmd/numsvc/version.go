package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hyp3rd/numsvc/internal/version"
)

func newVersionCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n",
				cfg.AppName, cfg.Version(version.Version), version.Commit, version.BuildDate)

			return err
		},
	}
}
