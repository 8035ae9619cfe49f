// dos.go - MS-DOS interrupt services and host file table (component F)
//
// Grounded on original_source/Core/MSDOS/Interrupt.cpp's AH-keyed switch and
// original_source/Core/MSDOS/File.cpp's handle allocation (scan 0..0xFFFE
// for the first free slot; handles stay stable once assigned).

package main

import (
	"os"
	"strings"
)

// DOSFile is one open host byte stream, addressed by a 16-bit DOS handle.
type DOSFile struct {
	f *os.File
}

// DOSFileTable maps DOS handles to open host files.
type DOSFileTable struct {
	files map[uint16]*DOSFile
}

func NewDOSFileTable() *DOSFileTable {
	return &DOSFileTable{files: make(map[uint16]*DOSFile)}
}

func dosPathToHost(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// Open allocates the first free handle in [0, 0xFFFE] and opens path
// read-only. It returns ok=false (not an error) on any host failure, since
// spec §4.F surfaces open failure as a guest-visible CF=1 rather than an
// EmulationError.
func (t *DOSFileTable) Open(path string) (handle uint16, ok bool) {
	f, err := os.Open(dosPathToHost(path))
	if err != nil {
		return 0, false
	}
	for h := uint16(0); h <= 0xFFFE; h++ {
		if _, taken := t.files[h]; !taken {
			t.files[h] = &DOSFile{f: f}
			return h, true
		}
	}
	f.Close()
	return 0, false
}

func (t *DOSFileTable) Read(handle uint16, dst []byte) (n int, ok bool) {
	df, found := t.files[handle]
	if !found {
		return 0, false
	}
	n, err := df.f.Read(dst)
	if err != nil && n == 0 {
		return 0, false
	}
	return n, true
}

// Seek matches DOS AH=42h's three origins: 0=start, 1=current, 2=end.
func (t *DOSFileTable) Seek(handle uint16, offset int64, origin int) (pos int64, ok bool) {
	df, found := t.files[handle]
	if !found {
		return 0, false
	}
	var whence int
	switch origin {
	case 0:
		whence = os.SEEK_SET
	case 1:
		whence = os.SEEK_CUR
	case 2:
		whence = os.SEEK_END
	default:
		return 0, false
	}
	pos, err := df.f.Seek(offset, whence)
	if err != nil {
		return 0, false
	}
	return pos, true
}

// handleDOS dispatches one MS-DOS interrupt vector.
func (s *Services) handleDOS(cpu *CPU, mem *Memory, vector byte) (handled bool, stop bool, err error) {
	switch vector {
	case 0x20:
		return true, true, nil
	case 0x21:
		stop, err = s.dos21(cpu, mem)
		return true, stop, err
	}
	return false, false, nil
}

func readCString(mem *Memory, seg, off uint16, maxLen int) []byte {
	var out []byte
	for i := 0; i < maxLen; i++ {
		b, err := mem.Read8(seg, off+uint16(i))
		if err != nil || b == 0 {
			break
		}
		out = append(out, b)
	}
	return out
}

func readDollarString(mem *Memory, seg, off uint16) []byte {
	var out []byte
	for i := 0; i < 0xFFFF; i++ {
		b, err := mem.Read8(seg, off+uint16(i))
		if err != nil || b == '$' {
			break
		}
		out = append(out, b)
	}
	return out
}

func (s *Services) dos21(cpu *CPU, mem *Memory) (stop bool, err error) {
	switch cpu.AH() {
	case 0x02:
		s.video.WriteChar(cpu.DL())
		return false, nil

	case 0x06, 0x07:
		c, ok := s.video.ReadChar()
		if !ok {
			return false, newErr(IoFailure, 0, 0, "console read interrupted by shutdown")
		}
		cpu.SetAL(c)
		cpu.SetZF(false)
		return false, nil

	case 0x09:
		s.video.WriteString(string(readDollarString(mem, cpu.DS(), cpu.DX())))
		return false, nil

	case 0x0B:
		if s.video.CharAvailable() {
			cpu.SetAL(1)
		} else {
			cpu.SetAL(0)
		}
		return false, nil

	case 0x19:
		cpu.SetAL(0)
		return false, nil

	case 0x30:
		cpu.SetAL(5)
		cpu.SetAH(0)
		return false, nil

	case 0x3D:
		path := string(readCString(mem, cpu.DS(), cpu.DX(), 256))
		handle, ok := s.dosFiles.Open(path)
		if !ok {
			cpu.SetAX(1)
			cpu.SetCF(true)
			return false, nil
		}
		cpu.SetAX(handle)
		cpu.SetCF(false)
		return false, nil

	case 0x3F:
		dst, err := mem.SliceMut(cpu.DS(), cpu.DX(), int(cpu.CX()))
		if err != nil {
			return false, err
		}
		n, ok := s.dosFiles.Read(cpu.BX(), dst)
		if !ok {
			cpu.SetAX(5)
			cpu.SetCF(true)
			return false, nil
		}
		cpu.SetAX(uint16(n))
		cpu.SetCF(false)
		return false, nil

	case 0x42:
		offset := int64(cpu.CX())<<16 | int64(cpu.DX())
		pos, ok := s.dosFiles.Seek(cpu.BX(), offset, int(cpu.AL()))
		if !ok {
			cpu.SetCF(true)
			return false, nil
		}
		cpu.SetCX(uint16(pos >> 16))
		cpu.SetDX(uint16(pos))
		cpu.SetCF(false)
		return false, nil

	case 0x4C:
		return true, nil

	case 0x50:
		return false, nil
	}
	return false, newErr(UnhandledInterrupt, 0, 0, "INT 21h: unhandled AH subfunction")
}
