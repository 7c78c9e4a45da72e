package romfs

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/XtremeTHN/nxroms/pkg/readable"
)

// buildRomFS assembles a minimal RomFS image with a single root
// directory holding one file, per spec.md §4.7's header + dir-meta +
// file-meta + data layout.
func buildRomFS(fileName string, content []byte) []byte {
	dirEntry := make([]byte, 0x18)
	binary.LittleEndian.PutUint32(dirEntry[0x00:], 0)          // parent
	binary.LittleEndian.PutUint32(dirEntry[0x04:], noSibling)  // next_sibling
	binary.LittleEndian.PutUint32(dirEntry[0x08:], noSibling)  // first_child
	binary.LittleEndian.PutUint32(dirEntry[0x0C:], 0)          // first_file (offset 0 in file table)
	binary.LittleEndian.PutUint32(dirEntry[0x10:], noSibling)  // next_hash
	binary.LittleEndian.PutUint32(dirEntry[0x14:], 0)          // name_len

	nameBytes := []byte(fileName)
	pad := (4 - len(nameBytes)%4) % 4
	fileEntrySize := 0x20 + len(nameBytes) + pad
	fileEntry := make([]byte, fileEntrySize)
	binary.LittleEndian.PutUint32(fileEntry[0x00:], 0)          // parent
	binary.LittleEndian.PutUint32(fileEntry[0x04:], noSibling)  // next_sibling
	binary.LittleEndian.PutUint64(fileEntry[0x08:], 0)          // data_offset
	binary.LittleEndian.PutUint64(fileEntry[0x10:], uint64(len(content)))
	binary.LittleEndian.PutUint32(fileEntry[0x18:], noSibling)  // next_hash
	binary.LittleEndian.PutUint32(fileEntry[0x1C:], uint32(len(nameBytes)))
	copy(fileEntry[0x20:], nameBytes)

	dirMetaOffset := int64(headerSize)
	dirMetaSize := int64(len(dirEntry))
	fileMetaOffset := dirMetaOffset + dirMetaSize
	fileMetaSize := int64(len(fileEntry))
	dataOffset := fileMetaOffset + fileMetaSize

	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(hdr[0x00:], headerSize)
	binary.LittleEndian.PutUint64(hdr[0x18:], uint64(dirMetaOffset))
	binary.LittleEndian.PutUint64(hdr[0x20:], uint64(dirMetaSize))
	binary.LittleEndian.PutUint64(hdr[0x38:], uint64(fileMetaOffset))
	binary.LittleEndian.PutUint64(hdr[0x40:], uint64(fileMetaSize))
	binary.LittleEndian.PutUint64(hdr[0x48:], uint64(dataOffset))

	img := append(hdr, dirEntry...)
	img = append(img, fileEntry...)
	img = append(img, content...)
	return img
}

func TestGetFileResolvesRootFile(t *testing.T) {
	content := []byte("NACP-BYTES")
	img := buildRomFS("control.nacp", content)

	r, err := Open(readable.NewMemoryRegion(img))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	region, err := r.GetFile("control.nacp")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	got, err := region.PeekAt(0, int64(len(content)))
	if err != nil {
		t.Fatalf("PeekAt: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("got %q, want %q", got, content)
	}
}

func TestGetFileMissingReturnsErrNotFound(t *testing.T) {
	img := buildRomFS("control.nacp", []byte("x"))
	r, err := Open(readable.NewMemoryRegion(img))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := r.GetFile("missing.bin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing file, got %v", err)
	}
}

func TestOpenRejectsBadHeaderSize(t *testing.T) {
	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(hdr[0:], 0x40) // wrong header_size
	if _, err := Open(readable.NewMemoryRegion(hdr)); err == nil {
		t.Fatal("expected ErrInvalidRomFS for wrong header_size")
	}
}
