package fatfs

// BlockSize is the fixed size, in bytes, of every block on a mounted
// device. It is a constant of this filesystem's on-disk format, not a
// property negotiated with the block device.
const BlockSize = 512

// BlockDevice is the contract this library consumes from the block
// device layer (spec: an opaque, byte-addressable store of fixed-size
// blocks). Formatting a new image and opening/closing the backing file
// by path are collaborators external to this package; see the
// internal/blockdev package for concrete implementations callers can
// plug into Mount.
type BlockDevice interface {
	// BlockCount returns the number of addressable blocks, or -1 if the
	// device is closed.
	BlockCount() int32
	// ReadBlock reads exactly BlockSize bytes from block idx into dst.
	// len(dst) must be BlockSize.
	ReadBlock(idx uint32, dst []byte) error
	// WriteBlock writes exactly BlockSize bytes from src to block idx.
	// len(src) must be BlockSize.
	WriteBlock(idx uint32, src []byte) error
}
