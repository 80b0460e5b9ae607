package protocol

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/danmuck/dgramchunk/internal/octet"
)

// TextHeaderLen is the encoded size of a Text without its content.
const TextHeaderLen = 4 + 2

// Text is an identified UTF-8 message.
//
// Wire format: id u32 | content length u16 | content bytes.
type Text struct {
	ID      uint32
	Content string
}

// EncodedLen is the number of bytes Encode writes.
func (t Text) EncodedLen() int {
	return TextHeaderLen + len(t.Content)
}

func (t Text) Encode(w *octet.Writer) error {
	if len(t.Content) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", ErrContentTooLong, len(t.Content))
	}
	w.WriteUint32(t.ID)
	w.WriteUint16(uint16(len(t.Content)))
	w.WriteString(t.Content)
	return nil
}

// DecodeText reads one Text from r.
func DecodeText(r *octet.Reader) (Text, error) {
	id, err := r.ReadUint32()
	if err != nil {
		return Text{}, err
	}
	n, err := r.ReadUint16()
	if err != nil {
		return Text{}, err
	}
	content, err := r.ReadBytes(int(n))
	if err != nil {
		return Text{}, err
	}
	if !utf8.Valid(content) {
		return Text{}, ErrInvalidText
	}
	return Text{ID: id, Content: string(content)}, nil
}

func (t Text) String() string {
	return fmt.Sprintf("Text{id: %d, content: %q}", t.ID, t.Content)
}
