package fatfs

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Root directory layout constants (spec.md §3, sizes resolved in
// SPEC_FULL.md §0).
const (
	RootDirEntryCount = 128 // FS_FILE_MAX_COUNT
	FilenameLen       = 16  // FS_FILENAME_LEN, including the trailing NUL
	MaxNameLen        = FilenameLen - 1

	rootDirEntrySize   = 32
	directoryNameOff   = 0
	directorySizeOff   = 16
	directoryBlockOff  = 20
	directoryUsedBytes = 22
)

// rootDir owns the in-memory image of the root directory region — a
// fixed 8-block area of 128 32-byte records — while a disk is mounted.
// Slot allocation is first-free ascending, matching the order `ls` lists
// occupied entries in.
type rootDir struct {
	dev       BlockDevice
	baseBlock uint32 // root_directory_index
	data      [rootDirBlocks * BlockSize]byte
	dirty     bool
}

func newRootDir(dev BlockDevice, baseBlock uint32) *rootDir {
	return &rootDir{dev: dev, baseBlock: baseBlock}
}

func (rd *rootDir) load() error {
	for b := uint32(0); b < rootDirBlocks; b++ {
		if err := rd.dev.ReadBlock(rd.baseBlock+b, rd.data[b*BlockSize:(b+1)*BlockSize]); err != nil {
			return newErr("mount", KindIO, err)
		}
	}
	rd.dirty = false
	return nil
}

func (rd *rootDir) flush() error {
	if !rd.dirty {
		return nil
	}
	for b := uint32(0); b < rootDirBlocks; b++ {
		if err := rd.dev.WriteBlock(rd.baseBlock+b, rd.data[b*BlockSize:(b+1)*BlockSize]); err != nil {
			return newErr("sync", KindIO, err)
		}
	}
	rd.dirty = false
	return nil
}

func (rd *rootDir) entry(slot int) []byte {
	off := slot * rootDirEntrySize
	return rd.data[off : off+rootDirEntrySize]
}

func (rd *rootDir) occupied(slot int) bool {
	return rd.entry(slot)[directoryNameOff] != 0
}

// rawName returns the raw, NUL-padded 16-byte filename field of slot.
func (rd *rootDir) rawName(slot int) [FilenameLen]byte {
	return [FilenameLen]byte(rd.entry(slot)[directoryNameOff : directoryNameOff+FilenameLen])
}

func (rd *rootDir) size(slot int) uint32 {
	return binary.LittleEndian.Uint32(rd.entry(slot)[directorySizeOff:])
}

func (rd *rootDir) firstBlock(slot int) uint16 {
	return binary.LittleEndian.Uint16(rd.entry(slot)[directoryBlockOff:])
}

func (rd *rootDir) setSize(slot int, size uint32) {
	binary.LittleEndian.PutUint32(rd.entry(slot)[directorySizeOff:], size)
	rd.dirty = true
}

func (rd *rootDir) setFirstBlock(slot int, block uint16) {
	binary.LittleEndian.PutUint16(rd.entry(slot)[directoryBlockOff:], block)
	rd.dirty = true
}

// cp437 is the historical OEM code page FAT short names are defined
// against (spec.md §9's "opaque byte string" gets a concrete encoding
// rather than relying on Go source encoding accidents).
var cp437 = charmap.CodePage437

// encodeName validates name (nonempty, at most MaxNameLen visible
// characters, representable in code page 437) and returns its on-disk,
// NUL-padded 16-byte form. Names are compared as the resulting raw bytes,
// so two Go strings that encode identically collide even if spelled with
// different Unicode code points.
func encodeName(name string) ([FilenameLen]byte, error) {
	var raw [FilenameLen]byte
	if name == "" {
		return raw, newErr("name", KindValidation, errNameEmpty)
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return raw, newErr("name", KindValidation, errNameTooLong)
	}
	enc, err := cp437.NewEncoder().String(name)
	if err != nil {
		return raw, newErr("name", KindValidation, errNameEncoding)
	}
	if len(enc) > MaxNameLen {
		return raw, newErr("name", KindValidation, errNameTooLong)
	}
	copy(raw[:], enc)
	return raw, nil
}

// find returns the slot of the occupied entry whose raw name equals raw,
// or -1 if none does.
func (rd *rootDir) find(raw [FilenameLen]byte) int {
	for i := 0; i < RootDirEntryCount; i++ {
		if rd.occupied(i) && rd.rawName(i) == raw {
			return i
		}
	}
	return -1
}

// insert allocates the lowest free slot, writes raw as its name with
// size=0 and first_block=FAT_EOC, and returns the slot. It fails if raw
// is already present or the directory is full.
func (rd *rootDir) insert(raw [FilenameLen]byte) (int, error) {
	if rd.find(raw) >= 0 {
		return -1, newErr("create", KindValidation, errNameExists)
	}
	for i := 0; i < RootDirEntryCount; i++ {
		if !rd.occupied(i) {
			e := rd.entry(i)
			copy(e[directoryNameOff:directoryNameOff+FilenameLen], raw[:])
			binary.LittleEndian.PutUint32(e[directorySizeOff:], 0)
			binary.LittleEndian.PutUint16(e[directoryBlockOff:], fatEOC)
			for j := directoryUsedBytes; j < rootDirEntrySize; j++ {
				e[j] = 0
			}
			rd.dirty = true
			return i, nil
		}
	}
	return -1, newErr("create", KindCapacity, errDirFull)
}

// remove zeroes slot's name, size and first_block, returning it to free.
func (rd *rootDir) remove(slot int) {
	e := rd.entry(slot)
	for i := 0; i < FilenameLen; i++ {
		e[directoryNameOff+i] = 0
	}
	binary.LittleEndian.PutUint32(e[directorySizeOff:], 0)
	binary.LittleEndian.PutUint16(e[directoryBlockOff:], 0)
	rd.dirty = true
}

// occupiedSlots returns the occupied slot indices in ascending order,
// i.e. the order `ls` lists entries in.
func (rd *rootDir) occupiedSlots() []int {
	var slots []int
	for i := 0; i < RootDirEntryCount; i++ {
		if rd.occupied(i) {
			slots = append(slots, i)
		}
	}
	return slots
}

// decodeName reverses encodeName for display purposes (Ls, DirEntry.Name).
func decodeName(raw [FilenameLen]byte) string {
	n := 0
	for n < FilenameLen && raw[n] != 0 {
		n++
	}
	s, err := cp437.NewDecoder().Bytes(raw[:n])
	if err != nil {
		return string(raw[:n]) // best effort; encodeName already validated raw at write time
	}
	return string(s)
}
