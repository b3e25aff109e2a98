package fs

import "encoding/binary"

// inode is the 16-byte on-disk record spec.md §3 defines:
// {file_id, size, start_block, is_deleted}, all little-endian uint32s.
type inode struct {
	FileID     uint32
	Size       uint32
	StartBlock uint32
	IsDeleted  uint32
}

// decodeInode reads a 16-byte inode record out of buf.
func decodeInode(buf []byte) inode {
	return inode{
		FileID:     binary.LittleEndian.Uint32(buf[0:4]),
		Size:       binary.LittleEndian.Uint32(buf[4:8]),
		StartBlock: binary.LittleEndian.Uint32(buf[8:12]),
		IsDeleted:  binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// encode writes n's 16-byte on-disk form into buf.
func (n inode) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], n.FileID)
	binary.LittleEndian.PutUint32(buf[4:8], n.Size)
	binary.LittleEndian.PutUint32(buf[8:12], n.StartBlock)
	binary.LittleEndian.PutUint32(buf[12:16], n.IsDeleted)
}

// inodeAt decodes the k'th inode record out of a full inode block.
func inodeAt(blockBuf []byte, k uint32) inode {
	off := inodeTableOffset + k*inodeRecordSize
	return decodeInode(blockBuf[off : off+inodeRecordSize])
}

// putInodeAt encodes n as the k'th inode record of a full inode block.
func putInodeAt(blockBuf []byte, k uint32, n inode) {
	off := inodeTableOffset + k*inodeRecordSize
	n.encode(blockBuf[off : off+inodeRecordSize])
}

// fsSize reads the formatted size (in sectors) from an inode block.
func fsSize(blockBuf []byte) uint32 {
	return binary.LittleEndian.Uint32(blockBuf[0:4])
}

// numCreated reads num_created — the number of inode slots ever used (one
// past the highest slot index), not the live file count, per spec.md §9's
// resolved ambiguity — from an inode block.
func numCreated(blockBuf []byte) uint32 {
	return binary.LittleEndian.Uint32(blockBuf[4:8])
}

// setNumCreated writes num_created back into an inode block.
func setNumCreated(blockBuf []byte, n uint32) {
	binary.LittleEndian.PutUint32(blockBuf[4:8], n)
}

// findFreeDataBlock scans the bitmap block for the lowest-numbered data
// block (starting at firstDataBlock) whose word has the allocated bit
// clear, bounded by both the bitmap's own capacity and the formatted
// file-system size.
func findFreeDataBlock(bitmapBuf []byte, size uint32) (uint32, bool) {
	limit := size
	if limit > maxBitmapWords {
		limit = maxBitmapWords
	}
	for blk := uint32(firstDataBlock); blk < limit; blk++ {
		off := blk * bitmapWordStride
		val := binary.LittleEndian.Uint32(bitmapBuf[off : off+4])
		if val&bitmapAllocated == 0 {
			return blk, true
		}
	}
	return 0, false
}

// markBitmapAllocated sets blk's bitmap word to the allocated sentinel.
func markBitmapAllocated(bitmapBuf []byte, blk uint32) {
	off := blk * bitmapWordStride
	binary.LittleEndian.PutUint32(bitmapBuf[off:off+4], bitmapAllocated)
}

// clearBitmap clears blk's bitmap word back to free.
func clearBitmap(bitmapBuf []byte, blk uint32) {
	off := blk * bitmapWordStride
	binary.LittleEndian.PutUint32(bitmapBuf[off:off+4], 0)
}
