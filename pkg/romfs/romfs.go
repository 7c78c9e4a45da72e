// Package romfs parses the RomFS hashed read-only filesystem (spec.md
// §4.7): a header naming the four hash/meta table regions, a directory
// meta table and a file meta table walked via sibling-chain offsets,
// and a trailing data blob.
//
// No teacher equivalent exists in falk-nsz-go (it never reads RomFS);
// grounded on original_source/nxroms/fs/romfs.py: RomFSHeader and the
// RomFSEntry/RomFSFile/RomFSDirectory sibling-chain walk, including its
// own "# TODO: implement directory opening" — this module likewise
// only resolves files by full path, not directory listings (DESIGN.md
// Open Question decisions).
package romfs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/XtremeTHN/nxroms/pkg/binfield"
	"github.com/XtremeTHN/nxroms/pkg/readable"
)

// ErrInvalidRomFS is spec.md §7's INVALID_ROMFS: the header_size field
// did not match the expected 0x50.
var ErrInvalidRomFS = errors.New("romfs: invalid header")

// ErrNotFound is returned by GetFile when no entry matches the path.
var ErrNotFound = errors.New("romfs: file not found")

const headerSize = 0x50

// noSibling is RomFS's sentinel for "no next entry in this chain"
// (0xFFFFFFFF, spec.md §4.7).
const noSibling = 0xFFFFFFFF

type header struct {
	headerSize        uint64
	dirHashTableOffset uint64
	dirHashTableSize   uint64
	dirMetaTableOffset uint64
	dirMetaTableSize   uint64
	fileHashTableOffset uint64
	fileHashTableSize   uint64
	fileMetaTableOffset uint64
	fileMetaTableSize   uint64
	dataOffset         uint64
}

func parseHeader(b []byte) (header, error) {
	var h header
	h.headerSize = binfield.U64(b, 0x00)
	if h.headerSize != headerSize {
		return h, fmt.Errorf("%w: header_size 0x%x != 0x%x", ErrInvalidRomFS, h.headerSize, headerSize)
	}
	h.dirHashTableOffset = binfield.U64(b, 0x08)
	h.dirHashTableSize = binfield.U64(b, 0x10)
	h.dirMetaTableOffset = binfield.U64(b, 0x18)
	h.dirMetaTableSize = binfield.U64(b, 0x20)
	h.fileHashTableOffset = binfield.U64(b, 0x28)
	h.fileHashTableSize = binfield.U64(b, 0x30)
	h.fileMetaTableOffset = binfield.U64(b, 0x38)
	h.fileMetaTableSize = binfield.U64(b, 0x40)
	h.dataOffset = binfield.U64(b, 0x48)
	return h, nil
}

// dirEntry is one record of the directory meta table.
type dirEntry struct {
	parentOffset    uint32
	nextSiblingOffset uint32
	firstChildOffset  uint32
	firstFileOffset   uint32
	nextHashOffset    uint32
	name              string
}

// fileEntry is one record of the file meta table.
type fileEntry struct {
	parentOffset      uint32
	nextSiblingOffset uint32
	dataOffset        uint64
	dataSize          uint64
	nextHashOffset    uint32
	name              string
}

// Reader parses and exposes a RomFS image over a backing
// readable.Reader.
type Reader struct {
	src     readable.Reader
	hdr     header
	dirs    map[uint32]dirEntry
	files   map[uint32]fileEntry
}

// Open parses the RomFS header and walks both meta tables into memory
// (spec.md §4.7).
func Open(src readable.Reader) (*Reader, error) {
	raw, err := src.PeekAt(0, headerSize)
	if err != nil {
		return nil, fmt.Errorf("romfs: read header: %w", err)
	}
	if len(raw) != headerSize {
		return nil, fmt.Errorf("romfs: short header read: got %d bytes", len(raw))
	}
	hdr, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	r := &Reader{src: src, hdr: hdr, dirs: make(map[uint32]dirEntry), files: make(map[uint32]fileEntry)}

	if err := r.walkDirs(); err != nil {
		return nil, err
	}
	if err := r.walkFiles(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) walkDirs() error {
	table, err := r.src.PeekAt(int64(r.hdr.dirMetaTableOffset), int64(r.hdr.dirMetaTableSize))
	if err != nil {
		return fmt.Errorf("romfs: read dir meta table: %w", err)
	}
	// Layout (spec.md §4.7): parent(4) next_sibling(4) first_child(4)
	// first_file(4) next_hash(4) name_len(4) name(name_len, padded to 4)
	off := uint32(0)
	for int64(off)+0x18 <= int64(len(table)) {
		nameLen := binfield.U32(table, int(off)+0x14)
		entrySize := 0x18 + int(nameLen)
		if nameLen%4 != 0 {
			entrySize += int(4 - nameLen%4)
		}
		if int64(off)+int64(entrySize) > int64(len(table)) {
			break
		}
		e := dirEntry{
			parentOffset:      binfield.U32(table, int(off)+0x00),
			nextSiblingOffset: binfield.U32(table, int(off)+0x04),
			firstChildOffset:  binfield.U32(table, int(off)+0x08),
			firstFileOffset:   binfield.U32(table, int(off)+0x0C),
			nextHashOffset:    binfield.U32(table, int(off)+0x10),
			name:              string(table[int(off)+0x18 : int(off)+0x18+int(nameLen)]),
		}
		r.dirs[off] = e
		off += uint32(entrySize)
	}
	return nil
}

func (r *Reader) walkFiles() error {
	table, err := r.src.PeekAt(int64(r.hdr.fileMetaTableOffset), int64(r.hdr.fileMetaTableSize))
	if err != nil {
		return fmt.Errorf("romfs: read file meta table: %w", err)
	}
	off := uint32(0)
	for int64(off)+0x20 <= int64(len(table)) {
		e := fileEntry{
			parentOffset:      binfield.U32(table, int(off)+0x00),
			nextSiblingOffset: binfield.U32(table, int(off)+0x04),
			dataOffset:        binfield.U64(table, int(off)+0x08),
			dataSize:          binfield.U64(table, int(off)+0x10),
			nextHashOffset:    binfield.U32(table, int(off)+0x18),
		}
		nameLen := binfield.U32(table, int(off)+0x1C)
		entrySize := 0x20 + int(nameLen)
		if nameLen%4 != 0 {
			entrySize += int(4 - nameLen%4)
		}
		if int64(off)+int64(entrySize) > int64(len(table)) {
			break
		}
		e.name = string(table[int(off)+0x20 : int(off)+0x20+int(nameLen)])
		r.files[off] = e
		off += uint32(entrySize)
	}
	return nil
}

// GetFile resolves a "/"-separated path (e.g. "control.nacp" or
// "dir/sub/file.bin") against the root directory (offset 0) by walking
// child and sibling chains, and returns a sub-region over its data.
func (r *Reader) GetFile(path string) (*readable.Region, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}

	dirOffset := uint32(0)
	for i, part := range parts {
		last := i == len(parts)-1
		if last {
			fe, ok := r.findFileInDir(dirOffset, part)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return readable.NewRegion(r.src, int64(r.hdr.dataOffset)+int64(fe.dataOffset), int64(fe.dataSize)), nil
		}
		child, ok := r.findDirInDir(dirOffset, part)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		dirOffset = child
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (r *Reader) findDirInDir(parent uint32, name string) (uint32, bool) {
	d, ok := r.dirs[parent]
	if !ok {
		return 0, false
	}
	child := d.firstChildOffset
	for child != noSibling {
		ce, ok := r.dirs[child]
		if !ok {
			return 0, false
		}
		if ce.name == name {
			return child, true
		}
		child = ce.nextSiblingOffset
	}
	return 0, false
}

func (r *Reader) findFileInDir(parent uint32, name string) (fileEntry, bool) {
	d, ok := r.dirs[parent]
	if !ok {
		return fileEntry{}, false
	}
	f := d.firstFileOffset
	for f != noSibling {
		fe, ok := r.files[f]
		if !ok {
			return fileEntry{}, false
		}
		if fe.name == name {
			return fe, true
		}
		f = fe.nextSiblingOffset
	}
	return fileEntry{}, false
}
