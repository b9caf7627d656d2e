package fatfs

import (
	"testing"

	"github.com/prameshsharma25/fatfs/internal/testdisk"
)

// FuzzFS is a self-contained fuzzing function whose working principle is
// similar to that of a virtual machine. It takes in a series of 64-bit
// operations and performs them on a *FS, checking only that the library
// itself never panics, that operations on valid handles do not fail, and
// that reported byte counts never exceed the size requested — it does
// not check data correctness or FAT consistency (see TestWriteReadRoundTrip and
// friends for that).
func FuzzFS(f *testing.F) {
	// 64-bit operation definition, starting with least significant bits:
	//
	//  - OP:       first 4 bits are the operation to perform.
	//  - WHO:      next 4 bits select a name out of a small fixed pool.
	//  - RESERVED: middle bits are reserved.
	//  - DATASIZE: last 16 bits is the size of the data to read/write.
	const (
		opCreate uint64 = iota
		opDelete
		opOpen
		opClose
		opRead
		opWrite
		opSeek

		datasizeOff = 48
		whoOff      = 4
		numNames    = 8
	)
	writeData := make([]byte, 1<<16)
	for i := range writeData {
		writeData[i] = byte(i)
	}
	f.Add(opCreate, opOpen, opWrite|(1000<<datasizeOff),
		opClose, opOpen, opRead|(1000<<datasizeOff),
		opCreate|(1<<whoOff), opOpen|(1<<whoOff), opWrite|(1<<whoOff)|(1000<<datasizeOff),
		opClose|(1<<whoOff), opOpen, opRead|(1<<whoOff)|(1001<<datasizeOff),
	)
	const dataBlocks = 32
	f.Fuzz(func(t *testing.T, fsop0, fsop1, fsop2, fsop3, fsop4, fsop5, fsop6, fsop7, fsop8, fsop9, fsop10, fsop11 uint64) {
		dev := testdisk.New(testdisk.Config{DataBlocks: dataBlocks})
		var fsys FS
		if err := fsys.Mount(dev, MountOptions{}); err != nil {
			t.Fatal(err)
		}
		fsops := [...]uint64{fsop0, fsop1, fsop2, fsop3, fsop4, fsop5, fsop6, fsop7, fsop8, fsop9, fsop10, fsop11}
		// fds[i] is the open handle for name i, or -1 if not open.
		fds := make([]int, numNames)
		for i := range fds {
			fds[i] = -1
		}
		readData := make([]byte, 1<<16)

		for _, fsop := range fsops {
			op := fsop & 0xf
			who := int(byte(fsop)>>whoOff) % numNames
			datasize := uint16(fsop >> datasizeOff)
			name := string(rune('a' + who))

			switch op {
			case opCreate:
				fsys.Create(name) // errors (e.g. already exists) are expected and ignored

			case opDelete:
				if fds[who] >= 0 {
					break // skip: would hit the already-open invariant
				}
				fsys.Delete(name)

			case opOpen:
				if fds[who] >= 0 {
					break // already open under this name slot
				}
				fd, err := fsys.Open(name)
				if err == nil {
					fds[who] = fd
				}

			case opClose:
				if fds[who] < 0 {
					break
				}
				if err := fsys.Close(fds[who]); err != nil {
					t.Fatalf("close of a valid handle failed: %v", err)
				}
				fds[who] = -1

			case opWrite:
				if fds[who] < 0 {
					break
				}
				n, err := fsys.Write(fds[who], writeData[:datasize])
				if err != nil {
					t.Fatalf("write failed: %v", err)
				}
				if n > int(datasize) {
					t.Fatalf("write reported more bytes than given: %d > %d", n, datasize)
				}

			case opRead:
				if fds[who] < 0 {
					break
				}
				n, err := fsys.Read(fds[who], readData[:datasize])
				if err != nil {
					t.Fatalf("read failed: %v", err)
				}
				if n > int(datasize) {
					t.Fatalf("read reported more bytes than requested: %d > %d", n, datasize)
				}

			case opSeek:
				if fds[who] < 0 {
					break
				}
				if err := fsys.Seek(fds[who], uint64(datasize)); err != nil {
					t.Fatalf("seek of a valid handle failed: %v", err)
				}
			}
		}
	})
}
