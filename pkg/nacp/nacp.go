// Package nacp parses control.nacp, the per-title metadata blob found
// in a Control NCA's RomFS (spec.md §4.9): a 16-slot per-language title
// table (name, publisher) and a display version string.
//
// Grounded on original_source/nxroms/nacp.py: the 16-slot layout,
// NUL-strip decode, and version field offset.
package nacp

import (
	"fmt"

	"github.com/XtremeTHN/nxroms/pkg/binfield"
)

// Size is the fixed length of a control.nacp file.
const Size = 0x4000

const (
	numTitles      = 16
	titleEntrySize = 0x300
	nameSize       = 0x200
	publisherSize  = 0x100
	versionOffset  = 0x3060
	versionSize    = 0x10
)

// Title is one language slot of the title table. A slot whose name and
// publisher are both all-zero is omitted from NACP.Titles (spec.md
// §4.9: "skip empty slots"); Language records which slot index a
// surviving Title came from, since skipping empty slots otherwise loses
// that information.
type Title struct {
	Language  int
	Name      string
	Publisher string
}

// NACP is the parsed contents of a control.nacp file.
type NACP struct {
	Titles  []Title
	Version string
}

// Parse decodes a Size-byte control.nacp buffer.
func Parse(b []byte) (*NACP, error) {
	if len(b) < Size {
		return nil, fmt.Errorf("nacp: short buffer: got %d bytes, want %d", len(b), Size)
	}

	n := &NACP{}
	for i := 0; i < numTitles; i++ {
		off := i * titleEntrySize
		nameRaw := binfield.Bytes(b, off, nameSize)
		pubRaw := binfield.Bytes(b, off+nameSize, publisherSize)
		if binfield.IsAllZero(nameRaw) && binfield.IsAllZero(pubRaw) {
			continue
		}
		n.Titles = append(n.Titles, Title{
			Language:  i,
			Name:      binfield.StripNUL(nameRaw),
			Publisher: binfield.StripNUL(pubRaw),
		})
	}

	n.Version = binfield.StripNUL(binfield.Bytes(b, versionOffset, versionSize))
	return n, nil
}
