// Package pipeline connects text batches to the datagram codec and records
// what happened.
package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/dgramchunk/internal/chunker"
	"github.com/danmuck/dgramchunk/internal/datagram"
	"github.com/danmuck/dgramchunk/internal/observability"
	"github.com/danmuck/dgramchunk/internal/protocol"
)

// PackTexts packs texts into datagrams of at most maxSize bytes.
func PackTexts(texts []protocol.Text, maxSize int) ([][]byte, error) {
	datagrams, err := datagram.SerializeToDatagrams(texts, maxSize)
	if err != nil {
		reason := "encode"
		if errors.Is(err, chunker.ErrItemTooLarge) {
			reason = "item_too_large"
		}
		observability.RecordPackRejected(reason)
		log.Error().Err(err).Str("severity", datagram.SeverityOf(err).String()).Int("max_size", maxSize).Msg("pack failed")
		return nil, err
	}
	observability.RecordPack(len(texts), datagrams, maxSize)
	log.Info().Int("messages", len(texts)).Int("datagrams", len(datagrams)).Int("max_size", maxSize).Msg("packed")
	return datagrams, nil
}

// UnpackTexts decodes texts from datagrams in order.
func UnpackTexts(datagrams [][]byte) ([]protocol.Text, error) {
	texts, err := datagram.DeserializeDatagrams(datagrams, protocol.DecodeText)
	if err != nil {
		severity := datagram.SeverityOf(err).String()
		observability.RecordUnpackFailure(severity)
		log.Warn().Err(err).Str("severity", severity).Int("datagrams", len(datagrams)).Msg("unpack failed")
		return nil, err
	}
	observability.RecordUnpack(len(texts))
	log.Debug().Int("messages", len(texts)).Int("datagrams", len(datagrams)).Msg("unpacked")
	return texts, nil
}

// ReadLines turns every non-blank line of r into a Text, numbered from 1.
func ReadLines(r io.Reader) ([]protocol.Text, error) {
	var texts []protocol.Text
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		texts = append(texts, protocol.Text{ID: uint32(len(texts) + 1), Content: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return texts, nil
}

// WriteLines writes one "id<TAB>content" line per text.
func WriteLines(w io.Writer, texts []protocol.Text) error {
	bw := bufio.NewWriter(w)
	for _, t := range texts {
		if _, err := fmt.Fprintf(bw, "%d\t%s\n", t.ID, t.Content); err != nil {
			return err
		}
	}
	return bw.Flush()
}
