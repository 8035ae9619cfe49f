// video_test.go - text-mode buffer and console input queue tests

package main

import "testing"

func TestWriteCharAdvancesCursorAndWraps(t *testing.T) {
	mem := NewMemory()
	v := NewTextBuffer(mem)
	v.WriteChar('A')
	row, col := v.Cursor()
	if row != 0 || col != 1 {
		t.Errorf("cursor = %d,%d, want 0,1", row, col)
	}
	ch, attr := v.Cell(0, 0)
	if ch != 'A' || attr != 0x07 {
		t.Errorf("cell(0,0) = %q/%02X, want A/07", ch, attr)
	}
}

func TestWriteCharControlCodes(t *testing.T) {
	mem := NewMemory()
	v := NewTextBuffer(mem)
	v.WriteChar('A')
	v.WriteChar('\r')
	row, col := v.Cursor()
	if col != 0 || row != 0 {
		t.Errorf("after CR cursor = %d,%d, want 0,0", row, col)
	}
	v.WriteChar('\n')
	row, col = v.Cursor()
	if row != 1 {
		t.Errorf("after LF row = %d, want 1", row)
	}
	v.WriteChar('B')
	v.WriteChar('\b')
	_, col = v.Cursor()
	if col != 0 {
		t.Errorf("after backspace col = %d, want 0", col)
	}
}

func TestWriteStringWrapsAtColumn80(t *testing.T) {
	mem := NewMemory()
	v := NewTextBuffer(mem)
	long := make([]byte, videoCols+5)
	for i := range long {
		long[i] = 'X'
	}
	v.WriteString(string(long))
	row, col := v.Cursor()
	if row != 1 || col != 5 {
		t.Errorf("cursor after 85 chars = %d,%d, want 1,5", row, col)
	}
}

func TestWriteCharScrollsWhenPastLastRow(t *testing.T) {
	mem := NewMemory()
	v := NewTextBuffer(mem)
	for i := 0; i < videoRows; i++ {
		v.WriteChar('\n')
	}
	row, _ := v.Cursor()
	if row != videoRows-1 {
		t.Errorf("row = %d, want clamped to %d", row, videoRows-1)
	}
}

func TestFeedAndReadCharRoundTrip(t *testing.T) {
	mem := NewMemory()
	v := NewTextBuffer(mem)
	v.Feed('q')
	if !v.CharAvailable() {
		t.Error("CharAvailable should be true after Feed")
	}
	c, ok := v.ReadChar()
	if !ok || c != 'q' {
		t.Errorf("ReadChar = %q,%v, want q,true", c, ok)
	}
	if v.CharAvailable() {
		t.Error("CharAvailable should be false after the queue drains")
	}
}

func TestShutdownUnblocksReadChar(t *testing.T) {
	mem := NewMemory()
	v := NewTextBuffer(mem)
	done := make(chan bool, 1)
	go func() {
		_, ok := v.ReadChar()
		done <- ok
	}()
	v.Shutdown()
	if ok := <-done; ok {
		t.Error("ReadChar should return ok=false once Shutdown fires")
	}
}

func TestResetAllowsReadCharAgainAfterShutdown(t *testing.T) {
	mem := NewMemory()
	v := NewTextBuffer(mem)
	v.Shutdown()
	v.Reset()

	v.Feed('z')
	c, ok := v.ReadChar()
	if !ok || c != 'z' {
		t.Errorf("ReadChar after Reset = %q,%v, want z,true", c, ok)
	}
}

func TestDimsMatchesFixedGeometry(t *testing.T) {
	v := NewTextBuffer(NewMemory())
	rows, cols := v.Dims()
	if rows != 25 || cols != 80 {
		t.Errorf("Dims = %d,%d, want 25,80", rows, cols)
	}
}
