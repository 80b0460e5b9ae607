package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/dgramchunk/internal/observability"
	"github.com/danmuck/dgramchunk/internal/pipeline"
	"github.com/danmuck/dgramchunk/internal/transport"
)

func newSendCmd() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Pack text lines and send them as UDP datagrams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootArgs.cfg
			texts, err := readTexts(inPath)
			if err != nil {
				return err
			}
			datagrams, err := pipeline.PackTexts(texts, cfg.MaxDatagramSize)
			if err != nil {
				return err
			}
			target, err := net.ResolveUDPAddr("udp", cfg.TargetAddr)
			if err != nil {
				return err
			}
			conn, err := net.ListenPacket("udp", ":0")
			if err != nil {
				return err
			}
			defer conn.Close()

			senderCfg := transport.DefaultSenderConfig(cfg.MaxDatagramSize)
			senderCfg.WriteTimeout = cfg.WriteTimeout
			tx := transport.NewSender(conn, target, senderCfg, log.Logger)
			if err := tx.Send(cmd.Context(), datagrams); err != nil {
				return err
			}
			log.Info().Str("target", target.String()).Int("datagrams", len(datagrams)).Msg("sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "-", "text input, one message per line")
	return cmd
}

func newListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Receive UDP datagrams and print decoded messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootArgs.cfg
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, err := net.ListenPacket("udp", cfg.ListenAddr)
			if err != nil {
				return err
			}
			defer conn.Close()

			out := cmd.OutOrStdout()
			rx := transport.NewReceiver(conn, cfg.MaxDatagramSize, log.Logger)
			metrics := observability.NewServer("dgramctl", log.Logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return metrics.Serve(gctx, cfg.MetricsAddr)
			})
			g.Go(func() error {
				log.Info().Str("addr", conn.LocalAddr().String()).Msg("listening")
				return rx.Run(gctx, func(p transport.Packet) error {
					texts, err := pipeline.UnpackTexts([][]byte{p.Data})
					if err != nil {
						// one bad packet does not stop the listener
						log.Warn().Err(err).Str("from", p.From.String()).Msg("dropped datagram")
						return nil
					}
					return pipeline.WriteLines(out, texts)
				})
			})
			return g.Wait()
		},
	}
}
