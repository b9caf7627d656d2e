package fatfs

import "encoding/binary"

// FAT entry reserved values. The FAT is an ordered array of uint16 cells,
// one per data block, indexed by data-block number (not absolute block
// index — block 0 of the data region is FAT entry 0).
const (
	fatFree uint16 = 0x0000
	fatEOC  uint16 = 0xFFFF // end of chain
)

const fatEntrySize = 2

// fatTable owns the in-memory image of every FAT block while a disk is
// mounted. It is loaded whole at mount, mutated in place by allocate/free,
// and flushed back one dirty block at a time — mirroring the teacher's
// FAT manager, generalized from 12/16/32-bit cluster entries down to the
// fixed 16-bit entries this format uses.
type fatTable struct {
	dev        BlockDevice
	baseBlock  uint32 // absolute block index of FAT block 0 (always 1)
	numBlocks  uint32 // fat_block_count
	dataBlocks uint16 // data_block_count: entries at or beyond this index are padding, never allocatable
	entries    []uint16
	dirty      []bool // dirty[i] tracks whether FAT block i needs flushing
}

func entriesPerBlock() int { return BlockSize / fatEntrySize }

// newFATTable constructs a fatTable sized to numBlocks whole FAT blocks,
// but restricts allocate to the first dataBlocks entries: per spec.md §3,
// "total entries ≥ data_block_count; trailing entries in the last FAT
// block are unused and must remain zero" — those trailing entries have
// no corresponding data block to address, so allocating one would write
// past the end of the data region.
func newFATTable(dev BlockDevice, baseBlock uint32, numBlocks uint8, dataBlocks uint16) *fatTable {
	n := int(numBlocks)
	return &fatTable{
		dev:        dev,
		baseBlock:  baseBlock,
		numBlocks:  uint32(n),
		dataBlocks: dataBlocks,
		entries:    make([]uint16, n*entriesPerBlock()),
		dirty:      make([]bool, n),
	}
}

// load reads every FAT block into the in-memory entries array.
func (ft *fatTable) load() error {
	var blk [BlockSize]byte
	epb := entriesPerBlock()
	for b := uint32(0); b < ft.numBlocks; b++ {
		if err := ft.dev.ReadBlock(ft.baseBlock+b, blk[:]); err != nil {
			return newErr("mount", KindIO, err)
		}
		base := int(b) * epb
		for i := 0; i < epb; i++ {
			ft.entries[base+i] = binary.LittleEndian.Uint16(blk[i*fatEntrySize:])
		}
	}
	return nil
}

// flush writes back every FAT block marked dirty since the last flush.
func (ft *fatTable) flush() error {
	var blk [BlockSize]byte
	epb := entriesPerBlock()
	for b := uint32(0); b < ft.numBlocks; b++ {
		if !ft.dirty[b] {
			continue
		}
		base := int(b) * epb
		for i := 0; i < epb; i++ {
			binary.LittleEndian.PutUint16(blk[i*fatEntrySize:], ft.entries[base+i])
		}
		if err := ft.dev.WriteBlock(ft.baseBlock+b, blk[:]); err != nil {
			return newErr("sync", KindIO, err)
		}
		ft.dirty[b] = false
	}
	return nil
}

func (ft *fatTable) markDirty(entryIdx int) {
	ft.dirty[entryIdx/entriesPerBlock()] = true
}

// next returns FAT[i], the successor of data block i in its chain.
func (ft *fatTable) next(i uint16) uint16 {
	return ft.entries[i]
}

// setNext sets FAT[i] = v and marks the owning block dirty.
func (ft *fatTable) setNext(i uint16, v uint16) {
	ft.entries[i] = v
	ft.markDirty(int(i))
}

// reserveEntryZero enforces FAT[0] == FAT_EOC, the guard that makes
// "first_block == FAT_EOC" an unambiguous empty-file marker: data block 0
// can never be allocated. Idempotent, called once per mount.
func (ft *fatTable) reserveEntryZero() {
	if ft.entries[0] != fatEOC {
		ft.setNext(0, fatEOC)
	}
}

// allocate performs a first-fit ascending scan starting at entry 1 (entry
// 0 is permanently reserved), bounded by dataBlocks since trailing FAT
// entries beyond the data region don't address a real block, and returns
// the first free block, marking it allocated (FAT_EOC, i.e. a new
// one-block chain) as it returns. It returns false if the FAT has no
// free entries.
func (ft *fatTable) allocate() (uint16, bool) {
	for i := 1; i < int(ft.dataBlocks); i++ {
		if ft.entries[i] == fatFree {
			ft.setNext(uint16(i), fatEOC)
			return uint16(i), true
		}
	}
	return 0, false
}

// freeChain walks head -> ... -> FAT_EOC and zeroes every entry visited.
// A bounded traversal guards against a corrupt cyclic chain: a chain
// longer than the number of FAT entries cannot be genuine.
func (ft *fatTable) freeChain(head uint16) error {
	if head == fatEOC {
		return nil // empty file, nothing to free
	}
	seen := 0
	max := len(ft.entries)
	cur := head
	for cur != fatEOC {
		if seen >= max {
			return newErr("delete", KindIO, errCyclicChain)
		}
		next := ft.next(cur)
		ft.setNext(cur, fatFree)
		cur = next
		seen++
	}
	return nil
}

// chainLength walks head -> ... -> FAT_EOC and counts the blocks visited,
// bounding the traversal the same way freeChain does.
func (ft *fatTable) chainLength(head uint16) (int, error) {
	if head == fatEOC {
		return 0, nil
	}
	n := 0
	max := len(ft.entries)
	cur := head
	for cur != fatEOC {
		n++
		if n > max {
			return 0, newErr("stat", KindIO, errCyclicChain)
		}
		cur = ft.next(cur)
	}
	return n, nil
}

// freeCount returns the number of allocatable entries equal to fatFree,
// for Info's fat_free_ratio. Entry 0 and padding entries beyond
// dataBlocks are excluded, matching what allocate can actually hand out.
func (ft *fatTable) freeCount() int {
	n := 0
	for i := 1; i < int(ft.dataBlocks); i++ {
		if ft.entries[i] == fatFree {
			n++
		}
	}
	return n
}
