package fatfs_test

import (
	"fmt"

	"github.com/prameshsharma25/fatfs"
	"github.com/prameshsharma25/fatfs/internal/testdisk"
)

func ExampleFS_basic_usage() {
	// device could be an SD card, RAM, or anything that implements the
	// BlockDevice interface.
	device := testdisk.New(testdisk.Config{DataBlocks: 16})
	var fsys fatfs.FS
	if err := fsys.Mount(device, fatfs.MountOptions{}); err != nil {
		panic(err)
	}

	if err := fsys.Create("newfile.txt"); err != nil {
		panic(err)
	}
	fd, err := fsys.Open("newfile.txt")
	if err != nil {
		panic(err)
	}
	if _, err := fsys.Write(fd, []byte("Hello, World!")); err != nil {
		panic(err)
	}
	if err := fsys.Seek(fd, 0); err != nil {
		panic(err)
	}

	buf := make([]byte, 13)
	if _, err := fsys.Read(fd, buf); err != nil {
		panic(err)
	}
	fmt.Println(string(buf))
	fsys.Close(fd)
	// Output:
	// Hello, World!
}
