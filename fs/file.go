package fs

import "github.com/gsandeep1241/SimulatedOS/disk"

// File is a handle onto one inode's data, opened via FileSystem.LookupFile.
// It tracks a sequential cursor (currentPos) independent of the persisted
// size; multiple handles to the same file do not share a cursor.
type File struct {
	fs         *FileSystem
	id         uint32
	startBlock uint32
	sizeBytes  uint32
	inodeSlot  uint32
	currentPos uint32
}

// blockAndOffset translates an absolute byte position into the sector that
// holds it and the byte offset within that sector.
func (f *File) blockAndOffset(pos uint32) (blockNo int, offset uint32) {
	return int(f.startBlock) + int(pos/disk.SectorSize), pos % disk.SectorSize
}

// Read copies up to n bytes starting at the current position into buf
// (which must be at least n bytes), reading one sector at a time and
// stopping early at end of file. It returns the number of bytes actually
// read and advances the position by that amount.
//
// The per-chunk advance is computed before currentPos is updated, so the
// final chunk's length is never silently dropped to zero — the defect
// spec.md §9 calls out in the source this is grounded on.
func (f *File) Read(n uint32, buf []byte) uint32 {
	var total uint32
	for total < n && f.currentPos < f.sizeBytes {
		blockNo, offset := f.blockAndOffset(f.currentPos)
		sector := f.fs.disk.Read(blockNo)

		chunk := disk.SectorSize - offset
		if remaining := f.sizeBytes - f.currentPos; chunk > remaining {
			chunk = remaining
		}
		if want := n - total; chunk > want {
			chunk = want
		}

		copy(buf[total:total+chunk], sector[offset:offset+chunk])
		total += chunk
		f.currentPos += chunk
	}
	return total
}

// Write copies n bytes from buf to the current position, one sector at a
// time via a read-modify-write of each touched block, advancing the
// position by n. If the write extends past the persisted size, the new
// size is written back to the inode block.
func (f *File) Write(n uint32, buf []byte) uint32 {
	var total uint32
	for total < n {
		blockNo, offset := f.blockAndOffset(f.currentPos)
		sector := f.fs.disk.Read(blockNo)

		chunk := disk.SectorSize - offset
		if want := n - total; chunk > want {
			chunk = want
		}

		copy(sector[offset:offset+chunk], buf[total:total+chunk])
		f.fs.disk.Write(blockNo, sector)

		total += chunk
		f.currentPos += chunk
	}

	if f.currentPos > f.sizeBytes {
		f.sizeBytes = f.currentPos
		f.persistSize()
	}
	return total
}

// Rewrite truncates the file to zero length and resets the cursor, leaving
// the claimed data block (and its start_block) untouched for reuse.
func (f *File) Rewrite() {
	f.sizeBytes = 0
	f.currentPos = 0
	f.persistSize()
}

// Reset moves the cursor back to the start of the file without touching
// its persisted size.
func (f *File) Reset() {
	f.currentPos = 0
}

// EoF reports whether the cursor has reached the end of the file. A
// zero-length file is at EoF from position 0.
func (f *File) EoF() bool {
	return f.currentPos == f.sizeBytes
}

// persistSize writes the handle's current size back into its inode
// record.
func (f *File) persistSize() {
	inodeBuf := f.fs.readInodeBlock()
	n := inodeAt(inodeBuf, f.inodeSlot)
	n.Size = f.sizeBytes
	putInodeAt(inodeBuf, f.inodeSlot, n)
	f.fs.disk.Write(inodeBlock, inodeBuf)
}
