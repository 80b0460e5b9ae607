// Package frame stores a datagram sequence on a byte stream so packed
// output can be written to files and read back.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	FixedHeaderLen        = 16
	Magic          uint32 = 0xD6C40001
	Version        uint16 = 1
)

var (
	ErrShortHeader        = errors.New("frame: short fixed header")
	ErrInvalidMagic       = errors.New("frame: invalid magic")
	ErrUnsupportedVersion = errors.New("frame: unsupported version")
	ErrDatagramTooLarge   = errors.New("frame: datagram too large")
	ErrTruncated          = errors.New("frame: truncated datagram")
	ErrIndexGap           = errors.New("frame: datagram index out of sequence")
)

// Header is the fixed wire header in front of each datagram.
type Header struct {
	Magic   uint32
	Version uint16
	Flags   uint16
	Index   uint32
	Length  uint32
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxDatagramBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxDatagramBytes: 64 * 1024}
}

// LimitsFor sizes limits to a configured max datagram size.
func LimitsFor(maxDatagramSize int) Limits {
	return Limits{MaxDatagramBytes: uint32(maxDatagramSize)}
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, FixedHeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint16(buf[4:6], h.Version)
	binary.BigEndian.PutUint16(buf[6:8], h.Flags)
	binary.BigEndian.PutUint32(buf[8:12], h.Index)
	binary.BigEndian.PutUint32(buf[12:16], h.Length)
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != FixedHeaderLen {
		return Header{}, fmt.Errorf("frame: invalid fixed header length: %d", len(b))
	}
	h := Header{
		Magic:   binary.BigEndian.Uint32(b[0:4]),
		Version: binary.BigEndian.Uint16(b[4:6]),
		Flags:   binary.BigEndian.Uint16(b[6:8]),
		Index:   binary.BigEndian.Uint32(b[8:12]),
		Length:  binary.BigEndian.Uint32(b[12:16]),
	}
	if h.Magic != Magic {
		return Header{}, ErrInvalidMagic
	}
	if h.Version != Version {
		return Header{}, ErrUnsupportedVersion
	}
	return h, nil
}

func WriteDatagram(w io.Writer, index uint32, payload []byte, limits Limits) error {
	if uint64(len(payload)) > uint64(limits.MaxDatagramBytes) {
		return ErrDatagramTooLarge
	}
	hb := EncodeHeader(Header{
		Magic:   Magic,
		Version: Version,
		Index:   index,
		Length:  uint32(len(payload)),
	})
	if _, err := w.Write(hb); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// ReadDatagram reads one framed datagram. It returns io.EOF when r is
// exhausted exactly at a frame boundary.
func ReadDatagram(r io.Reader, limits Limits) (Header, []byte, error) {
	var fixed [FixedHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Header{}, nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, nil, ErrShortHeader
		}
		return Header{}, nil, err
	}

	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Header{}, nil, err
	}
	if h.Length > limits.MaxDatagramBytes {
		return Header{}, nil, ErrDatagramTooLarge
	}

	payload := make([]byte, h.Length)
	if h.Length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Header{}, nil, ErrTruncated
			}
			return Header{}, nil, err
		}
	}
	return h, payload, nil
}

func WriteAll(w io.Writer, datagrams [][]byte, limits Limits) error {
	for i, dg := range datagrams {
		if err := WriteDatagram(w, uint32(i), dg, limits); err != nil {
			return fmt.Errorf("frame: write datagram %d: %w", i, err)
		}
	}
	return nil
}

// ReadAll reads framed datagrams until EOF. Indices must run 0..n-1.
func ReadAll(r io.Reader, limits Limits) ([][]byte, error) {
	var out [][]byte
	for {
		h, payload, err := ReadDatagram(r, limits)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("frame: read datagram %d: %w", len(out), err)
		}
		if int(h.Index) != len(out) {
			return nil, fmt.Errorf("%w: got %d want %d", ErrIndexGap, h.Index, len(out))
		}
		out = append(out, payload)
	}
}
