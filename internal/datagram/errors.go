package datagram

import (
	"errors"
	"fmt"

	"github.com/danmuck/dgramchunk/internal/chunker"
)

// ErrNoProgress is reported when a decode function returns without
// consuming any bytes from a datagram that still has bytes left.
var ErrNoProgress = errors.New("datagram: decoder consumed no bytes")

// EncodeError reports a message that could not be encoded.
type EncodeError struct {
	Index int
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("datagram: encode message %d: %v", e.Index, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// SizeError reports a message whose encoding can never fit in a datagram.
// It unwraps to chunker.ErrItemTooLarge.
type SizeError struct {
	Index   int
	Size    int
	MaxSize int
	Err     error
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("datagram: message %d encodes to %d bytes, max datagram size is %d", e.Index, e.Size, e.MaxSize)
}

func (e *SizeError) Unwrap() error { return e.Err }

// DecodeError reports the datagram and byte offset where decoding failed.
type DecodeError struct {
	Datagram int
	Offset   int
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("datagram: decode datagram %d at offset %d: %v", e.Datagram, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	default:
		return "info"
	}
}

// SeverityOf classifies err. Oversized items point at a configuration or
// data mismatch and are critical; codec failures are informational.
func SeverityOf(err error) Severity {
	if errors.Is(err, chunker.ErrItemTooLarge) {
		return SeverityCritical
	}
	return SeverityInfo
}
