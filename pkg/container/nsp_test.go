package container

import (
	"encoding/binary"
	"testing"

	"github.com/XtremeTHN/nxroms/pkg/readable"
)

const pfs0HeaderSize = 0x10
const pfs0EntrySize = 0x18

func buildPFS0(names []string, contents map[string][]byte) []byte {
	stringTable := []byte{}
	offsets := make(map[string]uint32, len(names))
	for _, name := range names {
		offsets[name] = uint32(len(stringTable))
		stringTable = append(stringTable, append([]byte(name), 0)...)
	}

	entryTable := make([]byte, len(names)*pfs0EntrySize)
	dataOffset := uint64(0)
	raw := []byte{}
	for i, name := range names {
		content := contents[name]
		off := i * pfs0EntrySize
		binary.LittleEndian.PutUint64(entryTable[off:], dataOffset)
		binary.LittleEndian.PutUint64(entryTable[off+8:], uint64(len(content)))
		binary.LittleEndian.PutUint32(entryTable[off+0x10:], offsets[name])
		raw = append(raw, content...)
		dataOffset += uint64(len(content))
	}

	header := make([]byte, pfs0HeaderSize)
	copy(header[0:4], "PFS0")
	binary.LittleEndian.PutUint32(header[4:], uint32(len(names)))
	binary.LittleEndian.PutUint32(header[8:], uint32(len(stringTable)))

	out := append(header, entryTable...)
	out = append(out, stringTable...)
	out = append(out, raw...)
	return out
}

func TestOpenNSPFiltersToNCAEntries(t *testing.T) {
	names := []string{"program.nca", "ticket.tik", "cert.cert"}
	contents := map[string][]byte{
		"program.nca": []byte("NCA-DATA"),
		"ticket.tik":  []byte("TIK-DATA"),
		"cert.cert":   []byte("CERT-DATA"),
	}
	img := buildPFS0(names, contents)

	nsp, err := OpenNSP(readable.NewMemoryRegion(img))
	if err != nil {
		t.Fatalf("OpenNSP: %v", err)
	}
	if len(nsp.Entries()) != 3 {
		t.Fatalf("Entries() len = %d, want 3", len(nsp.Entries()))
	}

	ncas := nsp.GetNCAs()
	if len(ncas) != 1 || ncas[0].Name != "program.nca" {
		t.Fatalf("GetNCAs() = %+v, want just program.nca", ncas)
	}
}
