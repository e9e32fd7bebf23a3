package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DefaultBufferLines is the capacity used for a non-positive capacity.
const DefaultBufferLines = 500

// Buffer is an [io.Writer] that keeps the most recent lines written to it. It
// holds log output while the terminal is owned by the TUI, to be flushed with
// [Buffer.WriteTo] afterwards. It is safe for concurrent use.
type Buffer struct {
	lines    [][]byte
	partial  []byte
	capacity int
	head     int
	size     int
	dropped  int
	mu       sync.Mutex
}

// NewBuffer creates a [Buffer] holding up to capacity lines.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferLines
	}

	return &Buffer{
		lines:    make([][]byte, capacity),
		capacity: capacity,
	}
}

// Write stores every complete line in p. Text after the last newline is held
// until a later write completes it. When the buffer is full the oldest line is
// dropped.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data := p
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			b.partial = append(b.partial, data...)

			break
		}

		line := make([]byte, 0, len(b.partial)+i+1)
		line = append(line, b.partial...)
		line = append(line, data[:i+1]...)
		b.partial = b.partial[:0]

		b.push(line)

		data = data[i+1:]
	}

	return len(p), nil
}

func (b *Buffer) push(line []byte) {
	b.lines[b.head] = line
	b.head = (b.head + 1) % b.capacity

	if b.size < b.capacity {
		b.size++
	} else {
		b.dropped++
	}
}

// Lines returns the stored lines, oldest first, including any incomplete
// trailing line.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, b.size+1)

	start := (b.head - b.size + b.capacity) % b.capacity
	for i := range b.size {
		out = append(out, string(b.lines[(start+i)%b.capacity]))
	}

	if len(b.partial) > 0 {
		out = append(out, string(b.partial))
	}

	return out
}

// Len returns the number of complete lines stored.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.size
}

// Dropped returns the number of lines discarded because the buffer was full.
func (b *Buffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.dropped
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.lines)
	b.partial = nil
	b.head = 0
	b.size = 0
	b.dropped = 0
}

// WriteTo writes the stored lines to w, oldest first, and empties the buffer.
// It implements [io.WriterTo].
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	lines := b.Lines()
	dropped := b.Dropped()

	b.Reset()

	var total int64

	if dropped > 0 {
		n, err := fmt.Fprintf(w, "(%d earlier log lines dropped)\n", dropped)
		total += int64(n)

		if err != nil {
			return total, fmt.Errorf("write log lines: %w", err)
		}
	}

	for _, line := range lines {
		n, err := io.WriteString(w, line)
		total += int64(n)

		if err != nil {
			return total, fmt.Errorf("write log lines: %w", err)
		}
	}

	return total, nil
}
