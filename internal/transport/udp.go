// Package transport delivers datagrams as UDP packets, one datagram per
// packet.
package transport

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/dgramchunk/internal/observability"
)

var (
	ErrDatagramTooLarge = errors.New("transport: datagram exceeds max size")
	ErrShortWrite       = errors.New("transport: short packet write")
)

// pollInterval bounds how long a blocked read waits before rechecking ctx.
const pollInterval = 200 * time.Millisecond

// Packet is one received datagram.
type Packet struct {
	From       net.Addr
	Data       []byte
	ReceivedAt time.Time
}

// Sender writes datagrams to a fixed target.
type Sender struct {
	conn   net.PacketConn
	target net.Addr
	cfg    SenderConfig
	rng    *rand.Rand
	logger zerolog.Logger
}

func NewSender(conn net.PacketConn, target net.Addr, cfg SenderConfig, logger zerolog.Logger) *Sender {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Sender{
		conn:   conn,
		target: target,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.With().Str("component", "sender").Str("target", target.String()).Logger(),
	}
}

// Send writes each datagram as one packet, in order. Oversized datagrams
// are rejected before anything is written. Transient write failures are
// retried with backoff up to MaxAttempts per datagram.
func (s *Sender) Send(ctx context.Context, datagrams [][]byte) error {
	for i, dg := range datagrams {
		if len(dg) > s.cfg.MaxSize {
			observability.RecordPacket("send", "oversize")
			return fmt.Errorf("%w: datagram %d is %d bytes, max %d", ErrDatagramTooLarge, i, len(dg), s.cfg.MaxSize)
		}
	}
	for i, dg := range datagrams {
		if err := s.sendOne(ctx, i, dg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sender) sendOne(ctx context.Context, index int, dg []byte) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.write(dg)
		if err == nil {
			observability.RecordPacket("send", "ok")
			s.logger.Debug().Int("datagram", index).Int("bytes", len(dg)).Msg("sent")
			return nil
		}
		if !retryable(err) || attempt >= s.cfg.MaxAttempts {
			observability.RecordPacket("send", "error")
			return fmt.Errorf("transport: send datagram %d: %w", index, err)
		}
		observability.RecordPacket("send", "retry")
		delay := NextBackoffDelay(s.cfg.Backoff, attempt, s.rng)
		s.logger.Warn().Err(err).Int("datagram", index).Int("attempt", attempt).Dur("delay", delay).Msg("send retry")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (s *Sender) write(dg []byte) error {
	if s.cfg.WriteTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	n, err := s.conn.WriteTo(dg, s.target)
	if err != nil {
		return err
	}
	if n != len(dg) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(dg))
	}
	return nil
}

// Receiver reads datagrams from a packet connection.
type Receiver struct {
	conn    net.PacketConn
	maxSize int
	logger  zerolog.Logger
}

func NewReceiver(conn net.PacketConn, maxSize int, logger zerolog.Logger) *Receiver {
	return &Receiver{
		conn:    conn,
		maxSize: maxSize,
		logger:  logger.With().Str("component", "receiver").Str("addr", conn.LocalAddr().String()).Logger(),
	}
}

// Run delivers packets to handle until ctx is done or handle returns an
// error. Packets larger than the max datagram size are dropped. Run returns
// nil when stopped by ctx.
func (r *Receiver) Run(ctx context.Context, handle func(Packet) error) error {
	// one spare byte so an oversized packet is distinguishable from a full one
	buf := make([]byte, r.maxSize+1)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := r.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
			return err
		}
		n, from, err := r.conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			observability.RecordPacket("recv", "error")
			return fmt.Errorf("transport: receive: %w", err)
		}
		if n > r.maxSize {
			observability.RecordPacket("recv", "oversize")
			r.logger.Warn().Str("from", from.String()).Int("max", r.maxSize).Msg("dropped oversized packet")
			continue
		}
		observability.RecordPacket("recv", "ok")
		data := make([]byte, n)
		copy(data, buf[:n])
		if err := handle(Packet{From: from, Data: data, ReceivedAt: time.Now()}); err != nil {
			return err
		}
	}
}
