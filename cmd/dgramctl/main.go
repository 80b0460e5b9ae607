package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/dgramchunk/internal/config"
	"github.com/danmuck/dgramchunk/internal/logging"
	"github.com/danmuck/dgramchunk/internal/observability"
)

var rootArgs struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dgramctl",
		Short:         "Pack messages into size-bounded datagrams and unpack them again",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&rootArgs.configPath, "config", "", "config file path (defaults apply when empty)")
	root.AddCommand(newPackCmd(), newUnpackCmd(), newSendCmd(), newListenCmd(), newConfigCmd())
	return root
}

func loadConfig() error {
	cfg := config.DefaultConfig()
	if rootArgs.configPath != "" {
		loaded, err := config.Load(rootArgs.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	rootArgs.cfg = cfg

	observability.InitLogger("dgramctl")
	if os.Getenv(logging.EnvLogLevel) == "" {
		if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
			zerolog.SetGlobalLevel(lvl)
			log.Logger = log.Logger.Level(lvl)
		}
	}
	log.Debug().Str("config", rootArgs.configPath).Int("max_datagram_size", cfg.MaxDatagramSize).Msg("config loaded")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("dgramctl failed")
		os.Exit(1)
	}
}
