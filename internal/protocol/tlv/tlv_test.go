package tlv

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/dgramchunk/internal/datagram"
	"github.com/danmuck/dgramchunk/internal/octet"
)

func TestEncodeDecodeFieldsRoundTripPreservesUnknownID(t *testing.T) {
	in := []Field{
		String(1, "intent-1"),
		{ID: 9999, Type: TypeBytes, Value: []byte{0xAA, 0xBB}}, // unknown field id
	}
	b, err := EncodeFields(in)
	if err != nil {
		t.Fatalf("encode fields: %v", err)
	}
	out, err := DecodeFields(b)
	if err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(out))
	}
	if out[1].ID != 9999 || out[1].Type != TypeBytes || !bytes.Equal(out[1].Value, []byte{0xAA, 0xBB}) {
		t.Fatalf("unknown field not preserved: %+v", out[1])
	}
}

func TestDecodeFieldsMalformedHeaderIsDeterministic(t *testing.T) {
	_, err := DecodeFields([]byte{1, 2, 3})
	if !errors.Is(err, ErrShortFieldHeader) {
		t.Fatalf("expected ErrShortFieldHeader, got %v", err)
	}
}

func TestDecodeFieldsMalformedLengthIsDeterministic(t *testing.T) {
	// id=1, type=string, len=5, value only 2 bytes
	payload := []byte{0, 1, TypeString, 0, 0, 0, 5, 'a', 'b'}
	_, err := DecodeFields(payload)
	if !errors.Is(err, ErrShortFieldValue) {
		t.Fatalf("expected ErrShortFieldValue, got %v", err)
	}
}

func TestDecodeFieldUnknownType(t *testing.T) {
	payload := []byte{0, 1, 42, 0, 0, 0, 0}
	_, err := DecodeField(octet.NewReader(payload))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	err := Field{ID: 1, Type: 0}.Encode(octet.NewWriter())
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestFieldsPackIntoDatagrams(t *testing.T) {
	in := []Field{U32(1, 42), String(2, "seed-a"), Bytes(3, bytes.Repeat([]byte{7}, 20))}
	// 11 + 13 + 27 bytes: the first two share a datagram
	datagrams, err := datagram.SerializeToDatagrams(in, 32)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if len(datagrams) != 2 {
		t.Fatalf("expected 2 datagrams, got %d", len(datagrams))
	}
	out, err := datagram.DeserializeDatagrams(datagrams, DecodeField)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d fields, got %d", len(in), len(out))
	}
	v, err := U32FromBytes(out[0].Value)
	if err != nil || v != 42 {
		t.Fatalf("u32 mismatch: v=%d err=%v", v, err)
	}
	if f, ok := GetField(out, 2); !ok || string(f.Value) != "seed-a" {
		t.Fatalf("string field mismatch: %+v", f)
	}
	if err := MustType(out[2], TypeBytes); err != nil {
		t.Fatalf("type mismatch: %v", err)
	}
}
