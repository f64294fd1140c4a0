package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hyp3rd/numsvc/internal/config"
)

const flagConfig = "config"

// newRootCmd builds the command tree. Subcommands share one viper instance,
// so flags bound by serve take precedence over the file and the environment.
func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "numsvc",
		Short:         "Statistics and prime factorization over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String(flagConfig, "", "config file (yaml, toml or json)")

	root.AddCommand(newServeCmd(v), newVersionCmd(v))

	return root
}

// loadConfig applies the --config flag and returns the validated configuration.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	}

	return config.FromViper(v)
}
