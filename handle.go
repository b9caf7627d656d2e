package fatfs

// Open-file-table operations (spec.md §4.4). A file may be opened
// multiple times; each call returns an independent handle with its own
// offset, bound to the same root-directory slot.

// Open returns a new handle for name, positioned at offset 0.
func (fsys *FS) Open(name string) (int, error) {
	if err := fsys.requireMounted("open"); err != nil {
		return -1, err
	}
	raw, err := encodeName(name)
	if err != nil {
		return -1, err
	}
	slot := fsys.root.find(raw)
	if slot < 0 {
		return -1, newErr("open", KindValidation, errNameNotFound)
	}
	fd, err := fsys.open.open(slot)
	if err != nil {
		return -1, err
	}
	fsys.trace("open", "name", name, "fd", fd)
	return fd, nil
}

// Close releases fd.
func (fsys *FS) Close(fd int) error {
	if err := fsys.requireMounted("close"); err != nil {
		return err
	}
	if err := fsys.open.close(fd); err != nil {
		return err
	}
	fsys.trace("close", "fd", fd)
	return nil
}

// Stat returns fd's file size in bytes.
func (fsys *FS) Stat(fd int) (int64, error) {
	if err := fsys.requireMounted("stat"); err != nil {
		return -1, err
	}
	if !fsys.open.valid(fd) {
		return -1, newErr("stat", KindValidation, errBadHandle)
	}
	slot := fsys.open.files[fd].dirSlot
	return int64(fsys.root.size(slot)), nil
}

// Seek stores off as fd's new byte offset. There is no range check here
// beyond what fits a uint64: reads past end-of-file return 0 bytes, and
// writes past end-of-file create a zero-filled hole, per spec.md §4.5-4.6.
func (fsys *FS) Seek(fd int, off uint64) error {
	if err := fsys.requireMounted("lseek"); err != nil {
		return err
	}
	if !fsys.open.valid(fd) {
		return newErr("lseek", KindValidation, errBadHandle)
	}
	fsys.open.files[fd].offset = off
	return nil
}
