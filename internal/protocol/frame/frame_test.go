package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteAllReadAllRoundTrip(t *testing.T) {
	in := [][]byte{[]byte("first"), {}, bytes.Repeat([]byte{0xAB}, 1200)}
	var buf bytes.Buffer
	if err := WriteAll(&buf, in, LimitsFor(1200)); err != nil {
		t.Fatalf("write all: %v", err)
	}
	if buf.Len() != 3*FixedHeaderLen+5+1200 {
		t.Fatalf("unexpected stream length: %d", buf.Len())
	}
	out, err := ReadAll(&buf, LimitsFor(1200))
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d datagrams, got %d", len(in), len(out))
	}
	for i := range in {
		if !bytes.Equal(out[i], in[i]) {
			t.Fatalf("datagram %d mismatch", i)
		}
	}
}

func TestReadAllEmptyStream(t *testing.T) {
	out, err := ReadAll(bytes.NewReader(nil), DefaultLimits())
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty result, out=%v err=%v", out, err)
	}
}

func TestReadDatagramShortHeaderIsDeterministic(t *testing.T) {
	_, _, err := ReadDatagram(bytes.NewReader([]byte{1, 2, 3}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadDatagramInvalidMagic(t *testing.T) {
	buf := EncodeHeader(Header{Magic: 1, Version: Version})
	_, _, err := ReadDatagram(bytes.NewReader(buf), DefaultLimits())
	if !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestReadDatagramUnsupportedVersion(t *testing.T) {
	buf := EncodeHeader(Header{Magic: Magic, Version: 9})
	_, _, err := ReadDatagram(bytes.NewReader(buf), DefaultLimits())
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestReadDatagramTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDatagram(&buf, 0, []byte("abcdef"), DefaultLimits()); err != nil {
		t.Fatalf("write: %v", err)
	}
	b := buf.Bytes()[:buf.Len()-2]
	_, _, err := ReadDatagram(bytes.NewReader(b), DefaultLimits())
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDatagramLimitsEnforced(t *testing.T) {
	if err := WriteDatagram(&bytes.Buffer{}, 0, make([]byte, 9), LimitsFor(8)); !errors.Is(err, ErrDatagramTooLarge) {
		t.Fatalf("expected ErrDatagramTooLarge on write, got %v", err)
	}
	var buf bytes.Buffer
	if err := WriteDatagram(&buf, 0, make([]byte, 9), LimitsFor(16)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadDatagram(&buf, LimitsFor(8)); !errors.Is(err, ErrDatagramTooLarge) {
		t.Fatalf("expected ErrDatagramTooLarge on read, got %v", err)
	}
}

func TestReadAllRejectsIndexGap(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteDatagram(&buf, 0, []byte("a"), DefaultLimits())
	_ = WriteDatagram(&buf, 2, []byte("b"), DefaultLimits())
	_, err := ReadAll(&buf, DefaultLimits())
	if !errors.Is(err, ErrIndexGap) {
		t.Fatalf("expected ErrIndexGap, got %v", err)
	}
}
