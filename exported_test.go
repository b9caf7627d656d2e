package fatfs

import (
	"github.com/prameshsharma25/fatfs/internal/testdisk"
)

// ExampleLs exercises the process-global facade end to end and checks
// the fixed Ls text format against spec.md §6.5 scenario 1: an empty
// file's data_blk prints as 65535 (FAT_EOC), and a deleted file leaves
// only the header line.
func ExampleLs() {
	dev := testdisk.New(testdisk.Config{DataBlocks: 4})
	if Mount(dev, MountOptions{}) != 0 {
		panic("mount failed")
	}
	defer Umount()

	if Create("a") != 0 {
		panic("create failed")
	}
	Ls()

	if Delete("a") != 0 {
		panic("delete failed")
	}
	Ls()

	// Output:
	// FS Ls:
	// file: a, size: 0, data_blk: 65535
	// FS Ls:
}
