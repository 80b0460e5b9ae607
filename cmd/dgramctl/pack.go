package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/dgramchunk/internal/pipeline"
	"github.com/danmuck/dgramchunk/internal/protocol"
	"github.com/danmuck/dgramchunk/internal/protocol/frame"
)

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func readTexts(path string) ([]protocol.Text, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return pipeline.ReadLines(in)
}

func readDatagrams(path string, maxSize int) ([][]byte, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return frame.ReadAll(in, frame.LimitsFor(maxSize))
}

func newPackCmd() *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack text lines into a datagram file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return fmt.Errorf("--out is required")
			}
			maxSize := rootArgs.cfg.MaxDatagramSize
			texts, err := readTexts(inPath)
			if err != nil {
				return err
			}
			datagrams, err := pipeline.PackTexts(texts, maxSize)
			if err != nil {
				return err
			}
			out, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
			if err != nil {
				return err
			}
			if err := frame.WriteAll(out, datagrams, frame.LimitsFor(maxSize)); err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			log.Info().Str("out", outPath).Int("datagrams", len(datagrams)).Msg("datagram file written")
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "-", "text input, one message per line")
	cmd.Flags().StringVar(&outPath, "out", "", "datagram file to write")
	return cmd
}

func newUnpackCmd() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Decode a datagram file and print its messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			datagrams, err := readDatagrams(inPath, rootArgs.cfg.MaxDatagramSize)
			if err != nil {
				return err
			}
			texts, err := pipeline.UnpackTexts(datagrams)
			if err != nil {
				return err
			}
			return pipeline.WriteLines(cmd.OutOrStdout(), texts)
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "-", "datagram file to read")
	return cmd
}
