// Package ringbuf provides a fixed-capacity circular byte buffer.
//
// Writes never fail and never grow the buffer: once the buffer is full the
// oldest bytes are evicted and counted in Overflow. The buffer either owns its
// storage (New) or borrows storage supplied by the caller (NewWithStorage).
//
// A Buffer is not safe for concurrent use.
package ringbuf

import (
	"errors"
	"io"
)

// ErrManaged is returned by Bind on a buffer that owns its storage.
var ErrManaged = errors.New("ringbuf: cannot rebind managed storage")

// Buffer is a circular byte store with overwrite-on-full semantics.
type Buffer struct {
	data     []byte
	used     int // occupied bytes
	read     int // read cursor
	write    int // write cursor
	overflow int // bytes evicted by writes
	managed  bool
}

// New creates a buffer that owns capacity bytes of storage.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity), managed: true}
}

// NewWithStorage creates a buffer backed by storage. The buffer capacity is
// len(storage); the caller keeps ownership of the slice.
func NewWithStorage(storage []byte) *Buffer {
	return &Buffer{data: storage}
}

// Bind replaces the borrowed storage and resets the buffer to empty. The
// overflow counter is cleared as well.
func (b *Buffer) Bind(storage []byte) error {
	if b.managed {
		return ErrManaged
	}
	b.data = storage
	b.overflow = 0
	b.Reset()
	return nil
}

// Len returns the number of occupied bytes.
func (b *Buffer) Len() int { return b.used }

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Remaining returns the number of bytes that can be written before eviction.
func (b *Buffer) Remaining() int { return len(b.data) - b.used }

// Empty reports whether the buffer holds no data.
func (b *Buffer) Empty() bool { return b.used == 0 }

// Overflow returns the number of bytes evicted by writes since the storage was
// bound.
func (b *Buffer) Overflow() int { return b.overflow }

// Reset empties the buffer. The overflow counter is kept.
func (b *Buffer) Reset() {
	b.used = 0
	b.read = 0
	b.write = 0
}

// Clear discards all occupied bytes by advancing the read cursor.
func (b *Buffer) Clear() {
	b.Discard(b.used)
}

// Write copies p into the buffer, evicting the oldest bytes when the buffer
// is full. It always returns len(p), nil.
func (b *Buffer) Write(p []byte) (int, error) {
	return b.put(p, len(p)), nil
}

// WriteString is like Write but takes a string.
func (b *Buffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

// Reserve advances the write cursor by n bytes without copying any data,
// following the same eviction rules as Write. It returns n.
func (b *Buffer) Reserve(n int) int {
	if n < 0 {
		return 0
	}
	return b.put(nil, n)
}

func (b *Buffer) put(src []byte, n int) int {
	size := len(b.data)
	if size == 0 {
		b.overflow += n
		return n
	}

	moved := 0
	for moved < n {
		chunk := n - moved
		if b.write+chunk > size {
			chunk = size - b.write
		}

		if src != nil {
			copy(b.data[b.write:b.write+chunk], src[moved:moved+chunk])
		}

		moved += chunk
		b.used += chunk
		b.write += chunk
		if b.write >= size {
			b.write -= size
		}

		// Oldest data sits at the write cursor once the buffer has wrapped.
		if b.used > size {
			b.overflow += b.used - size
			b.used = size
			b.read = b.write
		}
	}
	return moved
}

// Read copies up to len(p) occupied bytes into p and removes them from the
// buffer. It returns 0, io.EOF when the buffer is empty and p is not.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.used == 0 {
		return 0, io.EOF
	}
	return b.take(p, len(p)), nil
}

// Discard removes up to n bytes without copying them and returns the number
// of bytes removed.
func (b *Buffer) Discard(n int) int {
	if n <= 0 {
		return 0
	}
	return b.take(nil, n)
}

func (b *Buffer) take(dst []byte, n int) int {
	if n > b.used {
		n = b.used
	}
	size := len(b.data)

	moved := 0
	for moved < n {
		chunk := n - moved
		if b.read+chunk > size {
			chunk = size - b.read
		}

		if dst != nil {
			copy(dst[moved:moved+chunk], b.data[b.read:b.read+chunk])
		}

		moved += chunk
		b.used -= chunk
		b.read += chunk
		if b.read >= size {
			b.read -= size
		}
	}
	return moved
}

// PeekByte returns the byte at logical offset index without consuming it.
// Offsets beyond the occupied region wrap around. It returns -1 when the
// buffer is empty.
func (b *Buffer) PeekByte(index int) int {
	if b.used == 0 || index < 0 {
		return -1
	}
	index %= b.used
	index += b.read
	if index >= len(b.data) {
		index -= len(b.data)
	}
	return int(b.data[index])
}

// Data returns the occupied bytes as up to two slices aliasing the buffer
// storage. p2 is non-nil only when the occupied region wraps past the end of
// the storage. The slices are valid until the next mutating call.
func (b *Buffer) Data() (p1, p2 []byte) {
	if b.used == 0 {
		return nil, nil
	}
	end := b.read + b.used
	if end <= len(b.data) {
		return b.data[b.read:end], nil
	}
	return b.data[b.read:], b.data[:end-len(b.data)]
}

// Bytes returns a copy of the occupied bytes in logical order.
func (b *Buffer) Bytes() []byte {
	p1, p2 := b.Data()
	out := make([]byte, 0, len(p1)+len(p2))
	out = append(out, p1...)
	return append(out, p2...)
}
