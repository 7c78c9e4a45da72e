// Package pfs0 parses the PFS0 and HFS0 flat partition filesystem
// formats (spec.md §4.6): a fixed header, an entry table, a string
// table, then raw file data. HFS0 additionally carries a per-entry
// hash, which this module records but does not verify (hash
// verification is an external collaborator per spec.md §1 Non-goals).
//
// Grounded on falk-nsz-go/pkg/fs/pfs0.go (header/entry-table parse,
// raw_data_offset computation), generalized to also parse HFS0's
// wider 0x40-byte entries per
// original_source/nxroms/fs/pfs0.py's entry_size parameterization.
package pfs0

import (
	"fmt"

	"github.com/XtremeTHN/nxroms/pkg/binfield"
	"github.com/XtremeTHN/nxroms/pkg/readable"
)

// ErrInvalidHeader is spec.md §7's INVALID_HEADER(expected, got): the
// magic at offset 0 was neither "PFS0" nor "HFS0".
type ErrInvalidHeader struct {
	Expected string
	Got      string
}

func (e *ErrInvalidHeader) Error() string {
	return fmt.Sprintf("pfs0: invalid header: expected %q, got %q", e.Expected, e.Got)
}

// Kind distinguishes the two magics this package parses.
type Kind int

const (
	KindPFS0 Kind = iota
	KindHFS0
)

func (k Kind) String() string {
	if k == KindHFS0 {
		return "HFS0"
	}
	return "PFS0"
}

const (
	pfs0HeaderSize = 0x10
	pfs0EntrySize  = 0x18
	hfs0EntrySize  = 0x40
)

// Entry is one file recorded in the partition's entry table.
type Entry struct {
	Name       string
	DataOffset uint64
	DataSize   uint64
	// HashedSize and Hash are populated only for HFS0 entries
	// (spec.md §4.6); zero-value for PFS0.
	HashedSize uint32
	Hash       [32]byte
}

// Reader parses and exposes a PFS0/HFS0 partition over a backing
// readable.Reader.
type Reader struct {
	Kind         Kind
	entries      []Entry
	rawDataStart int64
	src          readable.Reader
}

// Open parses the partition header, entry table, and string table
// starting at offset 0 of src (spec.md §4.6).
func Open(src readable.Reader) (*Reader, error) {
	header, err := src.PeekAt(0, pfs0HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("pfs0: read header: %w", err)
	}
	if len(header) != pfs0HeaderSize {
		return nil, fmt.Errorf("pfs0: short header read: got %d bytes", len(header))
	}

	magic := string(header[0:4])
	var kind Kind
	var entrySize int
	switch magic {
	case "PFS0":
		kind = KindPFS0
		entrySize = pfs0EntrySize
	case "HFS0":
		kind = KindHFS0
		entrySize = hfs0EntrySize
	default:
		return nil, &ErrInvalidHeader{Expected: "PFS0 or HFS0", Got: magic}
	}

	numEntries := int(binfield.U32(header, 0x04))
	stringTableSize := int64(binfield.U32(header, 0x08))

	entryTableStart := int64(pfs0HeaderSize)
	entryTableSize := int64(numEntries * entrySize)
	stringTableStart := entryTableStart + entryTableSize

	entryTable, err := src.PeekAt(entryTableStart, entryTableSize)
	if err != nil {
		return nil, fmt.Errorf("pfs0: read entry table: %w", err)
	}
	stringTable, err := src.PeekAt(stringTableStart, stringTableSize)
	if err != nil {
		return nil, fmt.Errorf("pfs0: read string table: %w", err)
	}

	rawDataStart := stringTableStart + stringTableSize

	entries := make([]Entry, numEntries)
	for i := 0; i < numEntries; i++ {
		off := i * entrySize
		e := Entry{
			DataOffset: binfield.U64(entryTable, off),
			DataSize:   binfield.U64(entryTable, off+8),
		}
		nameOffset := binfield.U32(entryTable, off+0x10)
		e.Name = binfield.ZeroTerminated(stringTable[nameOffset:])

		if kind == KindHFS0 {
			// offset(8) size(8) string_offset(4) hashed_size(4) reserved(8) hash(32)
			e.HashedSize = binfield.U32(entryTable, off+0x14)
			copy(e.Hash[:], entryTable[off+0x20:off+0x40])
		}
		entries[i] = e
	}

	return &Reader{Kind: kind, entries: entries, rawDataStart: rawDataStart, src: src}, nil
}

// Entries returns every file recorded in the partition, in table order.
func (r *Reader) Entries() []Entry { return r.entries }

// GetItem returns a sub-region over the named entry's raw data, or
// false if no entry has that name.
func (r *Reader) GetItem(name string) (*readable.Region, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return r.regionFor(e), true
		}
	}
	return nil, false
}

// GetItems returns every entry's name paired with its data sub-region,
// in table order.
func (r *Reader) GetItems() []struct {
	Name   string
	Region *readable.Region
} {
	out := make([]struct {
		Name   string
		Region *readable.Region
	}, len(r.entries))
	for i, e := range r.entries {
		out[i] = struct {
			Name   string
			Region *readable.Region
		}{Name: e.Name, Region: r.regionFor(e)}
	}
	return out
}

func (r *Reader) regionFor(e Entry) *readable.Region {
	return readable.NewRegion(r.src, r.rawDataStart+int64(e.DataOffset), int64(e.DataSize))
}
