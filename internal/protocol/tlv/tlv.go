package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/danmuck/dgramchunk/internal/octet"
)

const HeaderLen = 7

var (
	ErrShortFieldHeader = errors.New("tlv: short field header")
	ErrShortFieldValue  = errors.New("tlv: short field value")
	ErrUnknownType      = errors.New("tlv: unknown field type")
	ErrValueTooLong     = errors.New("tlv: field value too long")
)

// Type IDs from tlv contract.
const (
	TypeU8     uint8 = 1
	TypeU16    uint8 = 2
	TypeU32    uint8 = 3
	TypeU64    uint8 = 4
	TypeBool   uint8 = 5
	TypeString uint8 = 6
	TypeBytes  uint8 = 7
)

// Field is one TLV record: id u16 | type u8 | length u32 | value.
// Fields are self-delimiting and can be packed directly into datagrams.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

func U32(id uint16, v uint32) Field {
	return Field{ID: id, Type: TypeU32, Value: binary.BigEndian.AppendUint32(nil, v)}
}

func String(id uint16, v string) Field {
	return Field{ID: id, Type: TypeString, Value: []byte(v)}
}

func Bytes(id uint16, v []byte) Field {
	buf := make([]byte, len(v))
	copy(buf, v)
	return Field{ID: id, Type: TypeBytes, Value: buf}
}

func (f Field) EncodedLen() int {
	return HeaderLen + len(f.Value)
}

func (f Field) Encode(w *octet.Writer) error {
	if f.Type < TypeU8 || f.Type > TypeBytes {
		return fmt.Errorf("%w: %d", ErrUnknownType, f.Type)
	}
	if uint64(len(f.Value)) > math.MaxUint32 {
		return ErrValueTooLong
	}
	w.WriteUint16(f.ID)
	w.WriteUint8(f.Type)
	w.WriteUint32(uint32(len(f.Value)))
	w.WriteBytes(f.Value)
	return nil
}

// DecodeField reads one field from r.
func DecodeField(r *octet.Reader) (Field, error) {
	if r.Remaining() < HeaderLen {
		return Field{}, ErrShortFieldHeader
	}
	id, _ := r.ReadUint16()
	typeID, _ := r.ReadUint8()
	l, _ := r.ReadUint32()
	if typeID < TypeU8 || typeID > TypeBytes {
		return Field{}, fmt.Errorf("%w: %d", ErrUnknownType, typeID)
	}
	if uint64(r.Remaining()) < uint64(l) {
		return Field{}, ErrShortFieldValue
	}
	val, err := r.ReadBytes(int(l))
	if err != nil {
		return Field{}, err
	}
	return Field{ID: id, Type: typeID, Value: val}, nil
}

func EncodeFields(fields []Field) ([]byte, error) {
	w := octet.NewWriter()
	for _, f := range fields {
		if err := f.Encode(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func DecodeFields(payload []byte) ([]Field, error) {
	fields := make([]Field, 0)
	r := octet.NewReader(payload)
	for !r.HasReachedEnd() {
		f, err := DecodeField(r)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func MustType(f Field, expected uint8) error {
	if f.Type != expected {
		return fmt.Errorf("tlv: field %d type mismatch: got %d want %d", f.ID, f.Type, expected)
	}
	return nil
}

func U32FromBytes(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("tlv: invalid u32 length: %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}
