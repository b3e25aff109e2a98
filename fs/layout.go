// Package fs implements the flat, single-level file system described in
// spec.md §3/§4.5 (component C5): an inode block, a free-block bitmap
// block, and contiguous data blocks addressed by 32-bit file ids.
//
// Grounded on spec.md §3/§4.5/§9 for the on-disk layout and the three
// deliberately-resolved ambiguities (free-bitmap parenthesization,
// num_created semantics, File.Read's position-advance order), cross
// checked against the original mp7/file_system.C implementation (via
// _examples/original_source) for the inode/bitmap byte layout. The
// block-staging idiom (read a whole sector, mutate a field, write the
// whole sector back) follows
// Oichkatzelesfrettschen-biscuit/biscuit/src/fs/blk.go's Bdev_block_t
// read/write-through pattern.
package fs

import "github.com/gsandeep1241/SimulatedOS/disk"

const (
	// inodeBlock holds the formatted size and the dense inode array.
	inodeBlock = 0
	// bitmapBlock holds the free-data-block bitmap.
	bitmapBlock = 1

	// inodeTableOffset is where the dense inode array begins within the
	// inode block, after the 4-byte size and 4-byte num_created fields.
	inodeTableOffset = 8
	// inodeRecordSize is sizeof(inode): four packed uint32 fields.
	inodeRecordSize = 16
	// maxInodes is how many inode records fit after inodeTableOffset.
	maxInodes = (disk.SectorSize - inodeTableOffset) / inodeRecordSize

	// bitmapWordStride is the byte distance between consecutive bitmap
	// words, per spec.md §3's "32-bit words at stride 8 bytes" coarse
	// encoding.
	bitmapWordStride = 8
	// bitmapAllocated is the sentinel marking a data block as in use.
	bitmapAllocated = 0x8000
	// bitmapReserved is written at bitmap word index 0 by Format,
	// encoding blocks 0 and 1 (the inode and bitmap blocks themselves)
	// as permanently unavailable for data, per spec.md §3.
	bitmapReserved = 0xC000
	// maxBitmapWords is how many bitmap words the 512-byte bitmap block
	// can hold at the configured stride.
	maxBitmapWords = disk.SectorSize / bitmapWordStride

	// firstDataBlock is the lowest block number CreateFile will ever
	// hand out: blocks 0 and 1 are metadata, so data starts at block 2.
	// Word index 0 of the bitmap (permanently marked bitmapReserved by
	// Format) is never consulted by the data-block search, since the
	// search itself starts at firstDataBlock rather than at word 0 —
	// resolving the ambiguity between the original source's byte-offset
	// scaling (block_num = wordIndex*8) and spec.md's plain "stride 8
	// bytes" description by keeping block number and bitmap word index
	// identical, which is simpler and free of the original's mismatched
	// scaling between CreateFile and DeleteFile.
	firstDataBlock = 2
)
