// floppy.go - read-only floppy image device (component G)
//
// Grounded on original_source/Core/HW/FloppyDrive.cpp: format is guessed
// from exact file size, boot signature is the two bytes at offset 510, and
// CHS reads linearize via (cylinder*heads+head)*sectors_per_track+(sector-1).

package main

import "os"

const sectorSize = 512

// geometry is set by size; unrecognized sizes fail insertion.
type geometry struct {
	sectorsPerTrack uint32
	heads           uint32
}

var knownGeometries = map[int64]geometry{
	163840:  {sectorsPerTrack: 8, heads: 1},
	184320:  {sectorsPerTrack: 9, heads: 1},
	368640:  {sectorsPerTrack: 9, heads: 2},
	1228800: {sectorsPerTrack: 15, heads: 2},
	1474560: {sectorsPerTrack: 18, heads: 2},
}

// FloppyDrive holds at most one inserted, read-only disk image in memory.
type FloppyDrive struct {
	data []byte
	geo  geometry
}

func NewFloppyDrive() *FloppyDrive { return &FloppyDrive{} }

// Insert reads the whole image into memory and infers its geometry from
// its size. It fails with UnknownDiskFormat for any size not in the table.
func (f *FloppyDrive) Insert(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapErr(IoFailure, 0, 0, "reading floppy image", err)
	}
	geo, ok := knownGeometries[int64(len(data))]
	if !ok {
		return newErr(UnknownDiskFormat, 0, 0, "unrecognized floppy image size")
	}
	f.data = data
	f.geo = geo
	return nil
}

func (f *FloppyDrive) Eject() { f.data = nil; f.geo = geometry{} }

func (f *FloppyDrive) HasDisk() bool { return f.data != nil }

func (f *FloppyDrive) SectorsPerTrack() uint32 { return f.geo.sectorsPerTrack }
func (f *FloppyDrive) Heads() uint32           { return f.geo.heads }
func (f *FloppyDrive) Size() int               { return len(f.data) }

// IsBootable reports whether the boot signature 0x55 0xAA appears at byte
// offset 510.
func (f *FloppyDrive) IsBootable() bool {
	if !f.HasDisk() || len(f.data) < 512 {
		return false
	}
	return f.data[510] == 0x55 && f.data[511] == 0xAA
}

// ReadLinear copies size bytes starting at a raw byte offset into dst.
func (f *FloppyDrive) ReadLinear(offset uint32, size uint32, dst []byte) error {
	if !f.HasDisk() {
		return newErr(IoFailure, 0, 0, "no disk inserted")
	}
	if uint64(offset)+uint64(size) > uint64(len(f.data)) {
		return newErr(IoFailure, 0, 0, "floppy read out of range")
	}
	n := copy(dst, f.data[offset:offset+size])
	if uint32(n) != size {
		return newErr(IoFailure, 0, 0, "short floppy read")
	}
	return nil
}

// ReadCHS reads count sectors starting at (cylinder, head, sector) — sector
// numbers are 1-based per the BIOS INT 13h convention.
func (f *FloppyDrive) ReadCHS(cylinder, head, sector, count byte, dst []byte) error {
	if !f.HasDisk() {
		return newErr(IoFailure, 0, 0, "no disk inserted")
	}
	linear := (uint32(cylinder)*f.geo.heads + uint32(head)) * f.geo.sectorsPerTrack
	linear += uint32(sector) - 1
	return f.ReadLinear(linear*sectorSize, uint32(count)*sectorSize, dst)
}
