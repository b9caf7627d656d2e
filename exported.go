package fatfs

import (
	"fmt"
	"sync"
)

// The package-level functions below are a convenience facade binding a
// single process-global *FS, matching the exact -1/short-count return
// convention of a C-style test harness (spec.md §6 and §9's "a
// convenience facade binding a process-global instance" design note).
// They add no behavior of their own beyond collapsing *FS's Go errors to
// that convention and, for Info and Ls, printing the result; prefer the *FS methods directly in new Go code.
var (
	globalMu sync.Mutex
	global   FS
)

// Mount binds dev as the process-global disk. Returns 0 on success, -1
// on failure.
func Mount(dev BlockDevice, opts MountOptions) int {
	globalMu.Lock()
	defer globalMu.Unlock()
	if err := global.Mount(dev, opts); err != nil {
		return -1
	}
	return 0
}

// Umount releases the process-global disk. Returns 0 on success, -1 on
// failure.
func Umount() int {
	globalMu.Lock()
	defer globalMu.Unlock()
	if err := global.Unmount(); err != nil {
		return -1
	}
	return 0
}

// Info prints the process-global disk's geometry to the fixed text
// layout of spec.md §6.4, returning 0 on success, -1 if not mounted.
func Info() int {
	globalMu.Lock()
	defer globalMu.Unlock()
	info, err := global.Info()
	if err != nil {
		return -1
	}
	fmt.Printf("total_blk_count=%d\n", info.TotalBlocks)
	fmt.Printf("fat_blk_count=%d\n", info.FATBlockCount)
	fmt.Printf("rdir_blk=%d\n", info.RootDirectory)
	fmt.Printf("data_blk=%d\n", info.DataBlockStart)
	fmt.Printf("data_blk_count=%d\n", info.DataBlockCount)
	fmt.Printf("fat_free_ratio=%d/%d\n", info.FATFreeBlocks, info.DataBlockCount)
	fmt.Printf("rdir_free_ratio=%d/%d\n", info.RootDirFreeFiles, RootDirEntryCount)
	return 0
}

// Create adds a new, empty file named name to the process-global disk.
// Returns 0 on success, -1 on failure.
func Create(name string) int {
	globalMu.Lock()
	defer globalMu.Unlock()
	if err := global.Create(name); err != nil {
		return -1
	}
	return 0
}

// Delete removes name from the process-global disk. Returns 0 on
// success, -1 on failure.
func Delete(name string) int {
	globalMu.Lock()
	defer globalMu.Unlock()
	if err := global.Delete(name); err != nil {
		return -1
	}
	return 0
}

// Ls prints every file on the process-global disk, in the fixed text
// layout of spec.md §6.5: a header line, then one `file: ...` line per
// occupied root entry in slot order. Returns 0 on success, -1 if not
// mounted.
func Ls() int {
	globalMu.Lock()
	defer globalMu.Unlock()
	entries, err := global.List()
	if err != nil {
		return -1
	}
	fmt.Println("FS Ls:")
	for _, e := range entries {
		fmt.Printf("file: %s, size: %d, data_blk: %d\n", e.Name, e.Size, e.FirstBlock)
	}
	return 0
}

// Open returns a new handle for name on the process-global disk, or -1
// on failure.
func Open(name string) int {
	globalMu.Lock()
	defer globalMu.Unlock()
	fd, err := global.Open(name)
	if err != nil {
		return -1
	}
	return fd
}

// Close releases fd. Returns 0 on success, -1 on failure.
func Close(fd int) int {
	globalMu.Lock()
	defer globalMu.Unlock()
	if err := global.Close(fd); err != nil {
		return -1
	}
	return 0
}

// Stat returns fd's size in bytes, or -1 on failure.
func Stat(fd int) int64 {
	globalMu.Lock()
	defer globalMu.Unlock()
	size, err := global.Stat(fd)
	if err != nil {
		return -1
	}
	return size
}

// Lseek sets fd's byte offset. Returns 0 on success, -1 on failure.
func Lseek(fd int, offset uint64) int {
	globalMu.Lock()
	defer globalMu.Unlock()
	if err := global.Seek(fd, offset); err != nil {
		return -1
	}
	return 0
}

// Read copies up to len(buf) bytes from fd into buf, returning the
// number of bytes actually read, or -1 on failure.
func Read(fd int, buf []byte) int {
	globalMu.Lock()
	defer globalMu.Unlock()
	n, err := global.Read(fd, buf)
	if err != nil {
		return -1
	}
	return n
}

// Write copies len(buf) bytes from buf to fd, returning the number of
// bytes actually written, or -1 on failure.
func Write(fd int, buf []byte) int {
	globalMu.Lock()
	defer globalMu.Unlock()
	n, err := global.Write(fd, buf)
	if err != nil {
		return -1
	}
	return n
}
