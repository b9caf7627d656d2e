// Package testdisk builds pre-formatted in-memory disk images for tests.
// Formatting a blank device is out of scope for the public fatfs API (the
// format is assumed to already exist on disk, per spec.md's non-goals),
// but every test still needs one: this package is the test-only
// replacement for what the teacher's Formatter did for its own tests.
package testdisk

import (
	"encoding/binary"

	"github.com/prameshsharma25/fatfs/internal/blockdev"
)

const (
	blockSize         = blockdev.BlockSize
	rootDirEntryCount = 128
	rootDirEntrySize  = 32
	rootDirBlocks     = (rootDirEntryCount * rootDirEntrySize) / blockSize
	fatEntrySize      = 2
)

var signature = [8]byte{'E', 'C', 'S', '1', '5', '0', 'F', 'S'}

// Config describes the geometry of a disk image to build.
type Config struct {
	// DataBlocks is the number of data blocks the image should have. The
	// FAT is sized to exactly cover DataBlocks entries, rounded up to a
	// whole number of blocks.
	DataBlocks int
}

// New builds and returns a Memory block device containing a freshly
// formatted, empty filesystem: a valid superblock, an all-free FAT (with
// entry 0 reserved as FAT_EOC) and an all-empty root directory.
func New(cfg Config) *blockdev.Memory {
	if cfg.DataBlocks <= 0 {
		cfg.DataBlocks = 16
	}
	entriesPerBlock := blockSize / fatEntrySize
	fatBlocks := (cfg.DataBlocks + entriesPerBlock - 1) / entriesPerBlock
	if fatBlocks < 1 {
		fatBlocks = 1
	}
	total := 1 + fatBlocks + rootDirBlocks + cfg.DataBlocks

	dev := blockdev.NewMemory(total)

	var sb [blockSize]byte
	copy(sb[0:8], signature[:])
	binary.LittleEndian.PutUint16(sb[8:10], uint16(total))
	binary.LittleEndian.PutUint16(sb[10:12], uint16(1+fatBlocks))
	binary.LittleEndian.PutUint16(sb[12:14], uint16(1+fatBlocks+rootDirBlocks))
	binary.LittleEndian.PutUint16(sb[14:16], uint16(cfg.DataBlocks))
	sb[16] = byte(fatBlocks)
	dev.WriteBlock(0, sb[:])

	var fatBlock0 [blockSize]byte
	binary.LittleEndian.PutUint16(fatBlock0[0:2], 0xFFFF) // entry 0 reserved
	dev.WriteBlock(1, fatBlock0[:])
	var zero [blockSize]byte
	for b := 2; b < 1+fatBlocks; b++ {
		dev.WriteBlock(uint32(b), zero[:])
	}

	for b := 1 + fatBlocks; b < 1+fatBlocks+rootDirBlocks; b++ {
		dev.WriteBlock(uint32(b), zero[:])
	}

	return dev
}
