package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbernstein/chargeway/backend-go/internal/config"
)

type rootOptions struct {
	cfgPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "stationctl",
		Short:         "Search, serve and seed the EV charging station backend locally",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "YAML or JSON configuration file (defaults to environment variables)")

	cmd.AddCommand(newSearchCmd(opts), newServeCmd(opts), newSeedCmd(opts))
	return cmd
}

// loadConfig reads the configuration file when one is given and falls back to
// the environment otherwise. Logging is initialised either way.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if o.cfgPath == "" {
		cfg = config.LoadFromEnv()
	} else {
		var err error
		cfg, err = config.LoadFile(o.cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	cfg.InitializeLogging()
	return cfg, nil
}
