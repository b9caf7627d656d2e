package fatfs

// OpenMax is the maximum number of simultaneously open file handles
// (FS_OPEN_MAX_COUNT).
const OpenMax = 32

// openFile is one live handle: a binding to a root-directory slot plus an
// independent byte offset. A file opened twice gets two independent
// openFile entries with the same dirSlot.
type openFile struct {
	live    bool
	dirSlot int
	offset  uint64
}

// openTable is purely in-memory and is cleared on mount and unmount, per
// spec.md §4.4. Handle allocation is lowest-free-ascending so that
// opening N files in sequence without closing any returns 0..N-1, which
// is part of this format's observable behavior (spec.md §8 scenario 6).
type openTable struct {
	files [OpenMax]openFile
}

func (ot *openTable) reset() {
	ot.files = [OpenMax]openFile{}
}

// open allocates the lowest free handle bound to dirSlot with offset 0.
func (ot *openTable) open(dirSlot int) (int, error) {
	for i := range ot.files {
		if !ot.files[i].live {
			ot.files[i] = openFile{live: true, dirSlot: dirSlot, offset: 0}
			return i, nil
		}
	}
	return -1, newErr("open", KindCapacity, errOpenTableFull)
}

func (ot *openTable) valid(fd int) bool {
	return fd >= 0 && fd < OpenMax && ot.files[fd].live
}

func (ot *openTable) close(fd int) error {
	if !ot.valid(fd) {
		return newErr("close", KindValidation, errBadHandle)
	}
	ot.files[fd] = openFile{}
	return nil
}

// isOpen reports whether any live handle currently binds to dirSlot,
// which `delete` must forbid (spec.md invariant 3).
func (ot *openTable) isOpen(dirSlot int) bool {
	for i := range ot.files {
		if ot.files[i].live && ot.files[i].dirSlot == dirSlot {
			return true
		}
	}
	return false
}

func (ot *openTable) anyOpen() bool {
	for i := range ot.files {
		if ot.files[i].live {
			return true
		}
	}
	return false
}
