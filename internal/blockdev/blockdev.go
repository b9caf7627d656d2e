// Package blockdev provides concrete implementations of the block device
// layer the fatfs library treats as an external collaborator: something
// that can open/close a backing store and read or write it one
// fixed-size block at a time. fatfs.BlockDevice is satisfied structurally,
// so this package has no dependency on fatfs itself.
package blockdev

import (
	"errors"
	"fmt"
	"os"
)

// BlockSize is the block size this package's devices operate in. It must
// match the filesystem's own BlockSize (fatfs.BlockSize) for any device
// constructed here to be mountable.
const BlockSize = 512

var (
	errClosed      = errors.New("blockdev: device not open")
	errOutOfRange  = errors.New("blockdev: block index out of range")
	errShortBuffer = errors.New("blockdev: buffer is not exactly one block")
)

// File is a block device backed by a regular OS file: a fixed-size image
// on disk treated as an array of BlockSize-byte blocks. It implements
// fatfs.BlockDevice plus Open/Close/BlockCount as described by the
// library's block device contract.
type File struct {
	f      *os.File
	blocks int32
}

// Open opens path for read/write access and determines its block count
// from its size. No lock is taken on the file. The file must already exist and its size
// must be a multiple of BlockSize; formatting a new image is out of
// scope for this package.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := info.Size()
	if size%BlockSize != 0 {
		f.Close()
		return nil, fmt.Errorf("blockdev: %s size %d is not a multiple of block size %d", path, size, BlockSize)
	}
	return &File{f: f, blocks: int32(size / BlockSize)}, nil
}

// Close releases the backing file. BlockCount returns -1 after Close.
func (d *File) Close() error {
	if d.f == nil {
		return errClosed
	}
	err := d.f.Close()
	d.f = nil
	d.blocks = 0
	return err
}

// BlockCount returns the number of blocks in the device, or -1 if closed.
func (d *File) BlockCount() int32 {
	if d.f == nil {
		return -1
	}
	return d.blocks
}

func (d *File) checkBounds(idx uint32, bufLen int) error {
	if d.f == nil {
		return errClosed
	}
	if bufLen != BlockSize {
		return errShortBuffer
	}
	if idx >= uint32(d.blocks) {
		return errOutOfRange
	}
	return nil
}

// ReadBlock reads exactly BlockSize bytes from block idx into dst.
func (d *File) ReadBlock(idx uint32, dst []byte) error {
	if err := d.checkBounds(idx, len(dst)); err != nil {
		return err
	}
	_, err := d.f.ReadAt(dst, int64(idx)*BlockSize)
	return err
}

// WriteBlock writes exactly BlockSize bytes from src to block idx.
func (d *File) WriteBlock(idx uint32, src []byte) error {
	if err := d.checkBounds(idx, len(src)); err != nil {
		return err
	}
	_, err := d.f.WriteAt(src, int64(idx)*BlockSize)
	return err
}

// Memory is an in-memory block device, useful for tests and for
// short-lived filesystems that never need to survive process exit. It is
// adapted from the teacher library's byte-slice test device
// (BlockByteSlice). Its size is fixed by NewMemory; reading or writing a
// block beyond it fails.
type Memory struct {
	buf    []byte
	closed bool
}

// NewMemory returns a Memory device with the given block count, all
// zeroed.
func NewMemory(blocks int) *Memory {
	return &Memory{buf: make([]byte, blocks*BlockSize)}
}

func (d *Memory) Close() error {
	d.closed = true
	return nil
}

func (d *Memory) BlockCount() int32 {
	if d.closed {
		return -1
	}
	return int32(len(d.buf) / BlockSize)
}

func (d *Memory) ReadBlock(idx uint32, dst []byte) error {
	if d.closed {
		return errClosed
	}
	if len(dst) != BlockSize {
		return errShortBuffer
	}
	off := int64(idx) * BlockSize
	if off+BlockSize > int64(len(d.buf)) {
		return errOutOfRange
	}
	copy(dst, d.buf[off:off+BlockSize])
	return nil
}

func (d *Memory) WriteBlock(idx uint32, src []byte) error {
	if d.closed {
		return errClosed
	}
	if len(src) != BlockSize {
		return errShortBuffer
	}
	off := int64(idx) * BlockSize
	if off+BlockSize > int64(len(d.buf)) {
		return errOutOfRange
	}
	copy(d.buf[off:off+BlockSize], src)
	return nil
}
