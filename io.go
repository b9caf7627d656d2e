package fatfs

// I/O engine (spec.md §4.5-4.6): translates (handle, offset, length,
// buffer) into a sequence of partial/whole block copies through a single
// block-sized scratch buffer, allocating new blocks on write as needed.

// blockAt walks head's chain to the block at zero-based position n,
// returning (fatEOC, false) if the chain terminates first.
func (fsys *FS) blockAt(head uint16, n uint64) (uint16, bool) {
	cur := head
	for i := uint64(0); i < n; i++ {
		if cur == fatEOC {
			return fatEOC, false
		}
		cur = fsys.fat.next(cur)
	}
	if cur == fatEOC {
		return fatEOC, false
	}
	return cur, true
}

// Read copies up to len(buf) bytes starting at fd's current offset into
// buf, advances the offset by the number of bytes copied, and returns
// that count. Reads never allocate and never mutate metadata.
func (fsys *FS) Read(fd int, buf []byte) (int, error) {
	if err := fsys.requireMounted("read"); err != nil {
		return 0, err
	}
	if !fsys.open.valid(fd) {
		return 0, newErr("read", KindValidation, errBadHandle)
	}
	of := &fsys.open.files[fd]
	size := uint64(fsys.root.size(of.dirSlot))
	if of.offset >= size {
		return 0, nil
	}
	remain := size - of.offset
	count := uint64(len(buf))
	if count > remain {
		count = remain
	}
	if count == 0 {
		return 0, nil
	}

	head := fsys.root.firstBlock(of.dirSlot)
	blockPos := of.offset / BlockSize
	inBlockOff := of.offset % BlockSize
	cur, ok := fsys.blockAt(head, blockPos)
	if !ok {
		return 0, nil
	}

	var scratch [BlockSize]byte
	var read uint64
	for read < count {
		if err := fsys.dev.ReadBlock(fsys.dataStart+uint32(cur), scratch[:]); err != nil {
			return int(read), newErr("read", KindIO, err)
		}
		start := uint64(0)
		if read == 0 {
			start = inBlockOff
		}
		avail := BlockSize - start
		toCopy := count - read
		if toCopy > avail {
			toCopy = avail
		}
		copy(buf[read:read+toCopy], scratch[start:start+toCopy])
		read += toCopy
		if read < count {
			cur = fsys.fat.next(cur)
			if cur == fatEOC {
				break
			}
		}
	}
	of.offset += read
	fsys.trace("read", "fd", fd, "n", read)
	return int(read), nil
}

// Write copies len(buf) bytes from buf to fd's current offset, allocating
// new blocks (zero-filling any skipped hole) as needed, advances the
// offset and the file's recorded size, and returns the number of bytes
// actually written — which is less than len(buf) only if the FAT is
// exhausted partway through.
func (fsys *FS) Write(fd int, buf []byte) (int, error) {
	if err := fsys.requireMounted("write"); err != nil {
		return 0, err
	}
	if err := fsys.requireWritable("write"); err != nil {
		return 0, err
	}
	if !fsys.open.valid(fd) {
		return 0, newErr("write", KindValidation, errBadHandle)
	}
	if len(buf) == 0 {
		return 0, nil // no-op: no allocation, no flush
	}

	of := &fsys.open.files[fd]
	slot := of.dirSlot
	head := fsys.root.firstBlock(slot)
	headIsNew := false
	if head == fatEOC {
		nb, ok := fsys.fat.allocate()
		if !ok {
			return 0, nil
		}
		var zero [BlockSize]byte
		if werr := fsys.dev.WriteBlock(fsys.dataStart+uint32(nb), zero[:]); werr != nil {
			fsys.fat.setNext(nb, fatFree)
			return 0, newErr("write", KindIO, werr)
		}
		head = nb
		headIsNew = true
		fsys.root.setFirstBlock(slot, head)
	}

	blockPos := of.offset / BlockSize
	inBlockOff := of.offset % BlockSize

	cur, failedToReach, err := fsys.extendToOffset(head, blockPos)
	if err != nil {
		return 0, err
	}
	if failedToReach {
		// Nothing was actually written this call: undo the first-block
		// allocation too, or an empty file (size 0) would be left
		// pointing at a one-block chain, breaking "chain length ==
		// ceil(size/BlockSize)" for size 0.
		if headIsNew {
			fsys.fat.setNext(head, fatFree)
			fsys.root.setFirstBlock(slot, fatEOC)
		}
		if ferr := fsys.fat.flush(); ferr != nil {
			return 0, ferr
		}
		if ferr := fsys.root.flush(); ferr != nil {
			return 0, ferr
		}
		return 0, nil
	}

	var scratch [BlockSize]byte
	var written int
	remaining := len(buf)
	first := true
	for remaining > 0 {
		if err := fsys.dev.ReadBlock(fsys.dataStart+uint32(cur), scratch[:]); err != nil {
			return written, newErr("write", KindIO, err)
		}
		start := 0
		if first {
			start = int(inBlockOff)
		}
		avail := BlockSize - start
		toCopy := remaining
		if toCopy > avail {
			toCopy = avail
		}
		copy(scratch[start:start+toCopy], buf[written:written+toCopy])
		if err := fsys.dev.WriteBlock(fsys.dataStart+uint32(cur), scratch[:]); err != nil {
			return written, newErr("write", KindIO, err)
		}
		written += toCopy
		remaining -= toCopy
		first = false
		if remaining > 0 {
			next := fsys.fat.next(cur)
			if next == fatEOC {
				nb, ok := fsys.fat.allocate()
				if !ok {
					break // FAT exhausted: stop, report what was written
				}
				var zero [BlockSize]byte
				if werr := fsys.dev.WriteBlock(fsys.dataStart+uint32(nb), zero[:]); werr != nil {
					fsys.fat.setNext(nb, fatFree)
					return written, newErr("write", KindIO, werr)
				}
				fsys.fat.setNext(cur, nb)
				next = nb
			}
			cur = next
		}
	}

	newSize := fsys.root.size(slot)
	if end := uint32(of.offset) + uint32(written); end > newSize {
		newSize = end
	}
	fsys.root.setSize(slot, newSize)
	if err := fsys.root.flush(); err != nil {
		return written, err
	}
	if err := fsys.fat.flush(); err != nil {
		return written, err
	}
	of.offset += uint64(written)
	fsys.trace("write", "fd", fd, "n", written)
	return written, nil
}

// extendToOffset walks head's chain to the block at position blockPos,
// allocating and zero-filling new blocks for any gap between the current
// chain tail and that position (the "hole" spec.md §4.6 describes). If
// the FAT is exhausted before the offset is reachable, every block
// allocated during this call is rolled back — freed and unlinked — so a
// write that can't even begin leaves the file's size and chain length
// exactly as they were, preserving invariant 2.
func (fsys *FS) extendToOffset(head uint16, blockPos uint64) (block uint16, failed bool, err error) {
	var allocated []uint16
	var linkPrev uint16
	haveLinkPrev := false

	cur := head
	reached := true
	for i := uint64(0); i < blockPos; i++ {
		next := fsys.fat.next(cur)
		if next == fatEOC {
			nb, ok := fsys.fat.allocate()
			if !ok {
				reached = false
				break
			}
			if !haveLinkPrev {
				linkPrev = cur
				haveLinkPrev = true
			}
			fsys.fat.setNext(cur, nb)
			allocated = append(allocated, nb)
			var zero [BlockSize]byte
			if werr := fsys.dev.WriteBlock(fsys.dataStart+uint32(nb), zero[:]); werr != nil {
				return 0, false, newErr("write", KindIO, werr)
			}
			next = nb
		}
		cur = next
	}
	if !reached {
		for _, b := range allocated {
			fsys.fat.setNext(b, fatFree)
		}
		if haveLinkPrev {
			fsys.fat.setNext(linkPrev, fatEOC)
		}
		return 0, true, nil
	}
	return cur, false, nil
}
