// Package disk implements the sector-granular, ATA-style PIO disk
// interface and its blocking wrapper described in spec.md §4.4/§6
// (component C4).
//
// Grounded on spec.md §6's PIO contract (`is_ready`, `issue_operation`,
// 256-word/512-byte sector transfer) and
// Oichkatzelesfrettschen-biscuit/biscuit/src/fs/blk.go's `Disk_i` interface
// and `Bdevcmd_t` command enum, renamed to this repo's `SimpleDisk`/
// `Operation` naming.
package disk

import (
	"github.com/gsandeep1241/SimulatedOS/kernel"
	"github.com/gsandeep1241/SimulatedOS/kernel/kfmt"
)

// SectorSize is the fixed transfer unit spec.md §6 specifies: 512 bytes,
// moved 256 words at a time over the PIO data port on real hardware.
const SectorSize = 512

var errBadSectorSize = &kernel.Error{Module: "disk", Message: "sector buffer is not exactly SectorSize bytes"}

// Operation identifies a PIO disk command.
type Operation uint8

const (
	// OpRead requests a sector be staged for transfer into the caller.
	OpRead Operation = iota
	// OpWrite requests a sector be overwritten from the caller's buffer.
	OpWrite
)

// SimpleDisk is the PIO-style capability set any disk implementation
// provides: a readiness flag, a way to start a command, and a way to move
// one sector across once the device is ready. BlockingDisk composes a
// SimpleDisk rather than extending a concrete type, per spec.md §9's
// "polymorphic disk" redesign note.
type SimpleDisk interface {
	// IsReady reports whether the device's ready bit is currently set.
	IsReady() bool
	// IssueOperation starts op against blockNo. The caller must poll
	// IsReady before the corresponding TransferIn/TransferOut is valid.
	IssueOperation(blockNo int, op Operation)
	// TransferIn copies the most recently read sector into buf.
	TransferIn(buf []byte)
	// TransferOut copies buf into the most recently issued write's sector.
	TransferOut(buf []byte)
}

// Device is a software PIO device: a fixed set of named sectors held in
// memory, with a configurable busy latency so tests can exercise
// BlockingDisk's wait queue deterministically. On real hardware is_ready
// polls a status port; Device.Latency stands in for however many polls
// that takes.
type Device struct {
	// Latency is the number of IsReady polls that return false after each
	// IssueOperation before the device reports ready. Zero means every
	// operation completes instantly.
	Latency int

	storage map[int][]byte

	pendingBlock int
	busyTicks    int
}

// NewDevice creates an empty simulated disk.
func NewDevice() *Device {
	return &Device{storage: map[int][]byte{}}
}

// IsReady reports the device's readiness, counting down the latency set by
// the most recent IssueOperation.
func (d *Device) IsReady() bool {
	if d.busyTicks > 0 {
		d.busyTicks--
		return false
	}
	return true
}

// IssueOperation records the target block and resets the busy countdown.
// Only the read/write direction implicit in which transfer method the
// caller uses afterward matters to this software device; op is kept for
// parity with the real PIO command-register contract.
func (d *Device) IssueOperation(blockNo int, op Operation) {
	d.pendingBlock = blockNo
	d.busyTicks = d.Latency
}

// TransferIn copies the current contents of the pending block into buf.
// Reading a block that was never written returns a zero-filled sector,
// matching an unformatted disk.
func (d *Device) TransferIn(buf []byte) {
	kfmt.Assert(len(buf) == SectorSize, errBadSectorSize)
	sector, ok := d.storage[d.pendingBlock]
	if !ok {
		sector = make([]byte, SectorSize)
	}
	copy(buf, sector)
}

// TransferOut persists buf as the content of the pending block.
func (d *Device) TransferOut(buf []byte) {
	kfmt.Assert(len(buf) == SectorSize, errBadSectorSize)
	sector := make([]byte, SectorSize)
	copy(sector, buf)
	d.storage[d.pendingBlock] = sector
}
