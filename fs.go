// Package fatfs implements a small POSIX-like file API backed by a
// fixed-size virtual block device: a FAT-based on-disk layout with a
// single flat root directory, mounted over a caller-supplied BlockDevice.
//
// The package exposes two layers. The idiomatic layer is *FS: an explicit,
// non-shared mount context with Go-shaped methods (error returns, a
// DirEntry slice from List, integer file handles from Open).
// The POSIX-shaped layer (Mount, Create, Delete, Ls, Open, Close, Stat,
// Lseek, Read, Write, Info in exported.go) binds a single process-global
// *FS and collapses errors to spec's -1/short-count convention, for
// callers translating a C-style test harness.
package fatfs

import (
	"log/slog"
)

// MountOptions configures Mount. The zero value is a read-write mount
// with tracing disabled.
type MountOptions struct {
	// ReadOnly forbids Create, Delete and Write; Read, Open, Close, Stat,
	// Lseek and List all still work.
	ReadOnly bool
	// Logger receives one debug record per state-changing operation. Nil
	// disables tracing.
	Logger *slog.Logger
}

// FS is an explicit mount context: every field that would otherwise be
// process-wide global state (per spec.md §9's design note) lives here
// instead, so two FS values can mount two images independently and
// concurrently in the same process — so long as each FS is itself used
// from a single goroutine at a time, per the single-threaded contract in
// spec.md §5.
type FS struct {
	dev     BlockDevice
	mounted bool
	opts    MountOptions

	sb   superblock
	fat  *fatTable
	root *rootDir
	open openTable

	dataStart uint32 // absolute block index of data block 0
}

func (fsys *FS) trace(op string, args ...any) {
	if fsys.opts.Logger == nil {
		return
	}
	fsys.opts.Logger.Debug(op, args...)
}

// Mount binds dev to fsys, validating its superblock and loading the FAT
// and root directory into memory. Any previously open handles on fsys are
// discarded (mirroring the teacher's mount-invalidates-open-files
// contract).
func (fsys *FS) Mount(dev BlockDevice, opts MountOptions) error {
	var blk [BlockSize]byte
	if err := dev.ReadBlock(0, blk[:]); err != nil {
		return newErr("mount", KindIO, err)
	}
	var sb superblock
	sb.data = blk
	if err := sb.validate(dev.BlockCount()); err != nil {
		return err
	}

	fsys.dev = dev
	fsys.sb = sb
	fsys.opts = opts
	fsys.fat = newFATTable(dev, 1, sb.fatBlockCount(), sb.dataBlockCount())
	if err := fsys.fat.load(); err != nil {
		return err
	}
	fsys.fat.reserveEntryZero()

	fsys.root = newRootDir(dev, uint32(sb.rootDirectoryIndex()))
	if err := fsys.root.load(); err != nil {
		return err
	}

	fsys.open.reset()
	fsys.dataStart = uint32(sb.dataBlockStart())
	fsys.mounted = true
	fsys.trace("mount")
	return nil
}

// Unmount flushes the FAT and root directory, releases fsys's binding to
// its device, and clears all caches. It fails if any file is still open.
func (fsys *FS) Unmount() error {
	if err := fsys.requireMounted("umount"); err != nil {
		return err
	}
	if fsys.open.anyOpen() {
		return newErr("umount", KindState, errFilesOpen)
	}
	if err := fsys.fat.flush(); err != nil {
		return err
	}
	if err := fsys.root.flush(); err != nil {
		return err
	}
	fsys.trace("umount")
	fsys.mounted = false
	fsys.dev = nil
	fsys.fat = nil
	fsys.root = nil
	fsys.open.reset()
	return nil
}

func (fsys *FS) requireMounted(op string) error {
	if !fsys.mounted {
		return newErr(op, KindNotMounted, nil)
	}
	return nil
}

func (fsys *FS) requireWritable(op string) error {
	if fsys.opts.ReadOnly {
		return newErr(op, KindState, errReadOnly)
	}
	return nil
}

// Info describes the geometry and free-space ratios of the mounted disk
// (spec.md §6.4).
type Info struct {
	TotalBlocks      uint16
	FATBlockCount    uint8
	RootDirectory    uint16
	DataBlockStart   uint16
	DataBlockCount   uint16
	FATFreeBlocks    int
	RootDirFreeFiles int
}

// Info returns the mounted disk's geometry and free-space ratios.
func (fsys *FS) Info() (Info, error) {
	if err := fsys.requireMounted("info"); err != nil {
		return Info{}, err
	}
	return Info{
		TotalBlocks:      fsys.sb.totalBlocks(),
		FATBlockCount:    fsys.sb.fatBlockCount(),
		RootDirectory:    fsys.sb.rootDirectoryIndex(),
		DataBlockStart:   fsys.sb.dataBlockStart(),
		DataBlockCount:   fsys.sb.dataBlockCount(),
		FATFreeBlocks:    fsys.fat.freeCount(),
		RootDirFreeFiles: RootDirEntryCount - len(fsys.root.occupiedSlots()),
	}, nil
}

// Create adds a new, empty directory entry named name.
func (fsys *FS) Create(name string) error {
	if err := fsys.requireMounted("create"); err != nil {
		return err
	}
	if err := fsys.requireWritable("create"); err != nil {
		return err
	}
	raw, err := encodeName(name)
	if err != nil {
		return err
	}
	if _, err := fsys.root.insert(raw); err != nil {
		return err
	}
	if err := fsys.root.flush(); err != nil {
		return err
	}
	fsys.trace("create", slog.String("name", name))
	return nil
}

// Delete removes name's directory entry and frees its FAT chain. It
// fails if name is open (invariant 3).
func (fsys *FS) Delete(name string) error {
	if err := fsys.requireMounted("delete"); err != nil {
		return err
	}
	if err := fsys.requireWritable("delete"); err != nil {
		return err
	}
	raw, err := encodeName(name)
	if err != nil {
		return err
	}
	slot := fsys.root.find(raw)
	if slot < 0 {
		return newErr("delete", KindValidation, errNameNotFound)
	}
	if fsys.open.isOpen(slot) {
		return newErr("delete", KindState, errFileOpen)
	}
	head := fsys.root.firstBlock(slot)
	if err := fsys.fat.freeChain(head); err != nil {
		return err
	}
	fsys.root.remove(slot)
	if err := fsys.fat.flush(); err != nil {
		return err
	}
	if err := fsys.root.flush(); err != nil {
		return err
	}
	fsys.trace("delete", slog.String("name", name))
	return nil
}

// DirEntry describes one occupied root directory slot, as returned by
// List.
type DirEntry struct {
	Name       string
	Size       uint32
	FirstBlock uint16
}

// List returns every occupied root directory entry, in slot order (the
// same order spec.md's Ls prints them in).
func (fsys *FS) List() ([]DirEntry, error) {
	if err := fsys.requireMounted("ls"); err != nil {
		return nil, err
	}
	slots := fsys.root.occupiedSlots()
	entries := make([]DirEntry, len(slots))
	for i, s := range slots {
		entries[i] = DirEntry{
			Name:       decodeName(fsys.root.rawName(s)),
			Size:       fsys.root.size(s),
			FirstBlock: fsys.root.firstBlock(s),
		}
	}
	return entries, nil
}
