// Package datagram serializes message sequences into size-bounded datagrams
// and reads them back.
//
// A datagram is the raw concatenation of whole encoded messages. There is no
// header or length prefix: message boundaries are recovered by decoding
// until the datagram is exhausted, so message encodings must be
// self-delimiting.
package datagram

import (
	"errors"

	"github.com/danmuck/dgramchunk/internal/chunker"
	"github.com/danmuck/dgramchunk/internal/octet"
)

// Encoder is implemented by message types that can write themselves to a
// byte sink.
type Encoder interface {
	Encode(w *octet.Writer) error
}

// DecodeFunc reads exactly one message from r.
type DecodeFunc[T any] func(r *octet.Reader) (T, error)

// SerializeToDatagrams encodes messages in order and packs them into
// datagrams of at most maxDatagramSize bytes. An empty input yields no
// datagrams. The first failing message aborts the call and no datagrams are
// returned.
func SerializeToDatagrams[T Encoder](messages []T, maxDatagramSize int) ([][]byte, error) {
	c := chunker.New(maxDatagramSize)
	w := octet.NewWriter()
	for i, msg := range messages {
		w.Reset()
		if err := msg.Encode(w); err != nil {
			return nil, &EncodeError{Index: i, Err: err}
		}
		if err := c.Push(w.Bytes()); err != nil {
			if errors.Is(err, chunker.ErrItemTooLarge) {
				return nil, &SizeError{Index: i, Size: w.Len(), MaxSize: maxDatagramSize, Err: err}
			}
			return nil, err
		}
	}
	return c.Finalize(), nil
}

// DeserializeDatagram decodes messages from buf until every byte is
// consumed. An empty buf yields no messages.
func DeserializeDatagram[T any](buf []byte, decode DecodeFunc[T]) ([]T, error) {
	return deserialize(0, buf, decode)
}

// DeserializeDatagrams decodes each datagram in order and concatenates the
// messages. The first datagram that fails to decode aborts the call;
// datagrams after it are not read.
func DeserializeDatagrams[T any](datagrams [][]byte, decode DecodeFunc[T]) ([]T, error) {
	var all []T
	for i, buf := range datagrams {
		msgs, err := deserialize(i, buf, decode)
		if err != nil {
			return nil, err
		}
		all = append(all, msgs...)
	}
	return all, nil
}

func deserialize[T any](index int, buf []byte, decode DecodeFunc[T]) ([]T, error) {
	var msgs []T
	r := octet.NewReader(buf)
	for !r.HasReachedEnd() {
		start := r.Pos()
		msg, err := decode(r)
		if err != nil {
			return nil, &DecodeError{Datagram: index, Offset: start, Err: err}
		}
		if r.Pos() == start {
			return nil, &DecodeError{Datagram: index, Offset: start, Err: ErrNoProgress}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
