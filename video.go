// video.go - text-mode display buffer and console bridge (component H)
//
// Grounded on original_source/Core/TTY.cpp's Write/Scroll (char+attr cells
// at a fixed physical address) and on cpu_x86_runner.go's channel-based
// suspension pattern for the blocking, interruptible read_char.

package main

import (
	"sync"
	"sync/atomic"
)

const (
	videoBase    = 0xB8000 // physical address of B000:8000
	videoCols    = 80
	videoRows    = 25
	videoCellLen = 2 // (char, attr) per cell
)

// TextBuffer is the 80x25 character/attribute display plus the keyboard
// input queue the console bridge exposes to BIOS/DOS read calls.
type TextBuffer struct {
	mem *Memory

	mu         sync.Mutex
	row, col   int
	defaultAtt byte

	input   chan byte
	pending atomic.Int32
	closed  chan struct{}
	once    sync.Once
}

func NewTextBuffer(mem *Memory) *TextBuffer {
	return &TextBuffer{
		mem:        mem,
		defaultAtt: 0x07,
		input:      make(chan byte, 256),
		closed:     make(chan struct{}),
	}
}

func (t *TextBuffer) cellAddr(row, col int) uint32 {
	return videoBase + uint32(row*videoCols+col)*videoCellLen
}

// WriteChar implements the control-character handling spec §4.H names:
// \n advances the row, \r resets the column, \b backs up one column, \a
// is ignored, anything else is written and the cursor advances mod 80.
func (t *TextBuffer) WriteChar(c byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch c {
	case '\n':
		t.row++
	case '\r':
		t.col = 0
	case '\b':
		if t.col > 0 {
			t.col--
		}
	case '\a':
		// ignored
	default:
		addr := t.cellAddr(t.row, t.col)
		t.mem.WritePhysical8(addr, c)
		t.mem.WritePhysical8(addr+1, t.defaultAtt)
		t.col++
		if t.col >= videoCols {
			t.col = 0
			t.row++
		}
	}
	if t.row >= videoRows {
		t.scrollLocked(t.row-videoRows+1, t.defaultAtt)
		t.row = videoRows - 1
	}
}

func (t *TextBuffer) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		t.WriteChar(s[i])
	}
}

// Scroll moves the buffer up by n lines, filling the newly exposed lines
// with blanks carrying the given attribute.
func (t *TextBuffer) Scroll(lines int, attr byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrollLocked(lines, attr)
}

func (t *TextBuffer) scrollLocked(lines int, attr byte) {
	if lines <= 0 {
		return
	}
	if lines >= videoRows {
		lines = videoRows
	}
	for row := 0; row < videoRows-lines; row++ {
		for col := 0; col < videoCols; col++ {
			src := t.cellAddr(row+lines, col)
			dst := t.cellAddr(row, col)
			t.mem.WritePhysical8(dst, t.mem.ReadPhysical8(src))
			t.mem.WritePhysical8(dst+1, t.mem.ReadPhysical8(src+1))
		}
	}
	for row := videoRows - lines; row < videoRows; row++ {
		for col := 0; col < videoCols; col++ {
			addr := t.cellAddr(row, col)
			t.mem.WritePhysical8(addr, ' ')
			t.mem.WritePhysical8(addr+1, attr)
		}
	}
}

func (t *TextBuffer) Clear() {
	for row := 0; row < videoRows; row++ {
		for col := 0; col < videoCols; col++ {
			addr := t.cellAddr(row, col)
			t.mem.WritePhysical8(addr, ' ')
			t.mem.WritePhysical8(addr+1, t.defaultAtt)
		}
	}
}

// Dims returns the fixed buffer geometry, for a front end sizing its grid.
func (t *TextBuffer) Dims() (rows, cols int) { return videoRows, videoCols }

// Cell reads one (char, attribute) pair directly from the physical buffer,
// for a front end's render pass.
func (t *TextBuffer) Cell(row, col int) (char, attr byte) {
	addr := t.cellAddr(row, col)
	return t.mem.ReadPhysical8(addr), t.mem.ReadPhysical8(addr + 1)
}

func (t *TextBuffer) MoveCursor(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.row, t.col = row, col
}

func (t *TextBuffer) Cursor() (row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.row, t.col
}

// Feed enqueues one host keystroke for a blocking ReadChar to consume.
func (t *TextBuffer) Feed(c byte) {
	select {
	case t.input <- c:
		t.pending.Add(1)
	case <-t.closed:
	}
}

// ReadChar blocks until a keystroke is available or Shutdown is called, in
// which case it returns ok=false so INT 16h/AH=00h's caller can unwind
// instead of hanging the emulator thread on stop (spec §5).
func (t *TextBuffer) ReadChar() (byte, bool) {
	select {
	case c := <-t.input:
		t.pending.Add(-1)
		return c, true
	case <-t.closed:
		return 0, false
	}
}

func (t *TextBuffer) CharAvailable() bool {
	return t.pending.Load() > 0
}

// Shutdown makes any blocked ReadChar return immediately. Safe to call
// more than once.
func (t *TextBuffer) Shutdown() {
	t.once.Do(func() { close(t.closed) })
}

// Reset prepares the input queue for a fresh run after Shutdown, so a
// later boot can block on ReadChar again. Must only be called once the
// prior run's goroutine has fully exited.
func (t *TextBuffer) Reset() {
	t.closed = make(chan struct{})
	t.once = sync.Once{}
}
