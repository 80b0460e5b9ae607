// Package chunker packs opaque byte items into capacity-bounded datagrams.
//
// Packing is a greedy single pass: an item goes into the current datagram if
// it fits, otherwise the current datagram is sealed and a new one is started.
// Items are never reordered and never split across datagrams.
package chunker

import (
	"errors"
	"fmt"
)

var (
	ErrItemTooLarge = errors.New("chunker: item exceeds max datagram size")
	ErrFinalized    = errors.New("chunker: push after finalize")
)

// Chunker accumulates items into datagrams of at most MaxSize bytes.
// It is not safe for concurrent use.
type Chunker struct {
	maxSize   int
	current   []byte
	completed [][]byte
	finalized bool
}

// New returns a Chunker producing datagrams of at most maxSize bytes.
// maxSize must be positive.
func New(maxSize int) *Chunker {
	if maxSize <= 0 {
		panic(fmt.Sprintf("chunker: max size must be positive, got %d", maxSize))
	}
	return &Chunker{
		maxSize: maxSize,
		current: make([]byte, 0, maxSize),
	}
}

func (c *Chunker) MaxSize() int {
	return c.maxSize
}

// Push appends item to the current datagram, sealing it first when item does
// not fit in the remaining space. The item bytes are copied. On error the
// chunker is left unchanged.
func (c *Chunker) Push(item []byte) error {
	if c.finalized {
		return ErrFinalized
	}
	if len(item) > c.maxSize {
		return fmt.Errorf("%w: item is %d bytes, max %d", ErrItemTooLarge, len(item), c.maxSize)
	}
	if len(c.current)+len(item) > c.maxSize {
		c.completed = append(c.completed, c.current)
		c.current = make([]byte, len(item), c.maxSize)
		copy(c.current, item)
		return nil
	}
	c.current = append(c.current, item...)
	return nil
}

// Remaining is the number of free bytes in the current datagram.
func (c *Chunker) Remaining() int {
	return c.maxSize - len(c.current)
}

// Len is the number of datagrams Finalize would return right now.
func (c *Chunker) Len() int {
	n := len(c.completed)
	if len(c.current) > 0 {
		n++
	}
	return n
}

func (c *Chunker) Finalized() bool {
	return c.finalized
}

// Finalize seals the current datagram if it holds any bytes and returns all
// datagrams in push order. A chunker that never accepted an item returns nil.
// After Finalize the chunker rejects pushes and further Finalize calls
// return nil.
func (c *Chunker) Finalize() [][]byte {
	if c.finalized {
		return nil
	}
	c.finalized = true
	if len(c.current) > 0 {
		c.completed = append(c.completed, c.current)
	}
	out := c.completed
	c.current = nil
	c.completed = nil
	return out
}
