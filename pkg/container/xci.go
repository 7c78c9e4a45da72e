package container

import (
	"fmt"

	"github.com/XtremeTHN/nxroms/pkg/binfield"
	"github.com/XtremeTHN/nxroms/pkg/pfs0"
	"github.com/XtremeTHN/nxroms/pkg/readable"
)

// ErrInvalidHeader is spec.md §7's INVALID_HEADER(expected, got) for
// the XCI HEAD magic check.
type ErrInvalidHeader struct {
	Expected string
	Got      string
}

func (e *ErrInvalidHeader) Error() string {
	return fmt.Sprintf("xci: invalid header: expected %q, got %q", e.Expected, e.Got)
}

const (
	xciHeaderSize   = 0x200
	headerOffset    = 0x100
	cardSizeField   = 0x10D
	hfs0OffsetField = 0x130
)

// CardSize is the XCI HEAD header's cartridge-capacity byte (spec.md
// §4.8 supplemented features, grounded on
// original_source/nxroms/rom/xci.py: CardSize).
type CardSize byte

const (
	CardSize1GB  CardSize = 0xFA
	CardSize2GB  CardSize = 0xF8
	CardSize4GB  CardSize = 0xF0
	CardSize8GB  CardSize = 0xE0
	CardSize16GB CardSize = 0xE1
	CardSize32GB CardSize = 0xE2
)

func (c CardSize) String() string {
	switch c {
	case CardSize1GB:
		return "1GB"
	case CardSize2GB:
		return "2GB"
	case CardSize4GB:
		return "4GB"
	case CardSize8GB:
		return "8GB"
	case CardSize16GB:
		return "16GB"
	case CardSize32GB:
		return "32GB"
	default:
		return fmt.Sprintf("CardSize(0x%02x)", byte(c))
	}
}

// XCI is a game-card image: a HEAD header pointing at a root HFS0 of
// named sub-partitions (update, normal, secure, logo; spec.md §4.8).
type XCI struct {
	CardSize    CardSize
	root        *pfs0.Reader
	partitions  map[string]*pfs0.Reader
}

// OpenXCI parses the HEAD header at headerOffset, then the root HFS0 it
// points to, then every named sub-partition the root lists.
func OpenXCI(src readable.Reader) (*XCI, error) {
	head, err := src.PeekAt(headerOffset, xciHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("xci: read header: %w", err)
	}
	if len(head) != xciHeaderSize {
		return nil, fmt.Errorf("xci: short header read: got %d bytes", len(head))
	}
	if string(head[0:4]) != "HEAD" {
		return nil, &ErrInvalidHeader{Expected: "HEAD", Got: string(head[0:4])}
	}

	// rom_size lives at absolute file offset 0x10D (spec.md §4.8); head
	// starts at headerOffset (0x100), so the local offset is 0x10D-0x100.
	cardSize := CardSize(binfield.U8(head, cardSizeField-headerOffset))
	hfs0Offset := int64(binfield.U64(head, hfs0OffsetField-headerOffset))

	rootRegion := readable.NewRegion(src, hfs0Offset, src.Size()-hfs0Offset)
	root, err := pfs0.Open(rootRegion)
	if err != nil {
		return nil, fmt.Errorf("xci: read root hfs0: %w", err)
	}

	x := &XCI{CardSize: cardSize, root: root, partitions: make(map[string]*pfs0.Reader)}
	for _, item := range root.GetItems() {
		sub, err := pfs0.Open(item.Region)
		if err != nil {
			return nil, fmt.Errorf("xci: read partition %q: %w", item.Name, err)
		}
		x.partitions[item.Name] = sub
	}
	return x, nil
}

// Partition returns the named sub-partition ("update", "normal",
// "secure", or "logo"), or false if the XCI doesn't carry one. This
// generic accessor resolves spec.md's flagged inconsistency about how
// individual partitions were exposed (DESIGN.md Open Question
// decisions).
func (x *XCI) Partition(name string) (*pfs0.Reader, bool) {
	p, ok := x.partitions[name]
	return p, ok
}

// PartitionNames returns the names of every sub-partition the root HFS0
// lists.
func (x *XCI) PartitionNames() []string {
	names := make([]string, 0, len(x.partitions))
	for name := range x.partitions {
		names = append(names, name)
	}
	return names
}
