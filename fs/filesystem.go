package fs

import (
	"encoding/binary"

	"github.com/gsandeep1241/SimulatedOS/disk"
)

// FileSystem mounts a single flat file system on top of a blocking disk.
// Mount caches only the disk handle; every lookup re-reads the inode and
// bitmap blocks, trading performance for the trivial durability spec.md
// §4.5 calls for.
type FileSystem struct {
	disk *disk.BlockingDisk
}

// Format writes a fresh inode block (formatted size, num_created=0, an
// empty inode array) and a fresh bitmap block (the 0xC000 sentinel at word
// 0, zero elsewhere) to d.
func Format(d *disk.BlockingDisk, size uint32) {
	inodeBuf := make([]byte, disk.SectorSize)
	binary.LittleEndian.PutUint32(inodeBuf[0:4], size)
	setNumCreated(inodeBuf, 0)
	d.Write(inodeBlock, inodeBuf)

	bitmapBuf := make([]byte, disk.SectorSize)
	binary.LittleEndian.PutUint32(bitmapBuf[0:4], bitmapReserved)
	d.Write(bitmapBlock, bitmapBuf)
}

// Mount remembers d as the backing disk. No other state is cached.
func Mount(d *disk.BlockingDisk) *FileSystem {
	return &FileSystem{disk: d}
}

func (fsys *FileSystem) readInodeBlock() []byte {
	return fsys.disk.Read(inodeBlock)
}

func (fsys *FileSystem) readBitmapBlock() []byte {
	return fsys.disk.Read(bitmapBlock)
}

// LookupFile scans the inode array for the first non-deleted inode whose
// file id matches, returning a fresh file handle for it.
func (fsys *FileSystem) LookupFile(id uint32) (*File, bool) {
	buf := fsys.readInodeBlock()
	nc := numCreated(buf)

	for k := uint32(0); k < nc; k++ {
		n := inodeAt(buf, k)
		if n.FileID == id && n.IsDeleted == 0 {
			return &File{
				fs:         fsys,
				id:         id,
				startBlock: n.StartBlock,
				sizeBytes:  n.Size,
				inodeSlot:  k,
			}, true
		}
	}
	return nil, false
}

// CreateFile reuses the first deleted inode slot if one exists, otherwise
// grows the dense array by one slot. It then claims the lowest-numbered
// free data block, persisting both the inode and bitmap blocks. It returns
// false, per spec.md §7's sentinel-return discipline, if the inode array or
// the disk itself is full — both are ordinary runtime conditions a caller
// must recover from, not programmer errors.
func (fsys *FileSystem) CreateFile(id uint32) bool {
	inodeBuf := fsys.readInodeBlock()
	nc := numCreated(inodeBuf)
	size := fsSize(inodeBuf)

	slot := nc
	for k := uint32(0); k < nc; k++ {
		if inodeAt(inodeBuf, k).IsDeleted == 1 {
			slot = k
			break
		}
	}
	growing := slot == nc
	if growing && nc >= maxInodes {
		return false
	}

	bitmapBuf := fsys.readBitmapBlock()
	blockNum, ok := findFreeDataBlock(bitmapBuf, size)
	if !ok {
		return false
	}
	markBitmapAllocated(bitmapBuf, blockNum)

	putInodeAt(inodeBuf, slot, inode{FileID: id, StartBlock: blockNum})
	if growing {
		setNumCreated(inodeBuf, nc+1)
	}

	fsys.disk.Write(bitmapBlock, bitmapBuf)
	fsys.disk.Write(inodeBlock, inodeBuf)
	return true
}

// DeleteFile marks the first non-deleted inode matching id as deleted and
// frees its starting block in the bitmap.
func (fsys *FileSystem) DeleteFile(id uint32) bool {
	inodeBuf := fsys.readInodeBlock()
	nc := numCreated(inodeBuf)

	for k := uint32(0); k < nc; k++ {
		n := inodeAt(inodeBuf, k)
		if n.FileID != id || n.IsDeleted == 1 {
			continue
		}

		n.IsDeleted = 1
		putInodeAt(inodeBuf, k, n)

		bitmapBuf := fsys.readBitmapBlock()
		clearBitmap(bitmapBuf, n.StartBlock)

		fsys.disk.Write(bitmapBlock, bitmapBuf)
		fsys.disk.Write(inodeBlock, inodeBuf)
		return true
	}
	return false
}
