package container

import (
	"encoding/binary"
	"testing"

	"github.com/XtremeTHN/nxroms/pkg/readable"
)

// buildXCI assembles a minimal valid XCI image: a HEAD header at
// headerOffset naming cardSize and the root partition offset, followed
// by a root partition whose single entry (partitionName) is itself a
// partition (spec.md §4.8). Both are built with buildPFS0 and so carry
// PFS0 magic; pfs0.Open accepts PFS0 and HFS0 alike.
func buildXCI(cardSize CardSize, partitionName string, partitionFiles map[string][]byte, partitionFileNames []string) []byte {
	partition := buildPFS0(partitionFileNames, partitionFiles)

	rootHFS0Offset := int64(headerOffset) + int64(xciHeaderSize)
	root := buildPFS0([]string{partitionName}, map[string][]byte{partitionName: partition})

	head := make([]byte, xciHeaderSize)
	copy(head[0:4], "HEAD")
	head[cardSizeField-headerOffset] = byte(cardSize)
	binary.LittleEndian.PutUint64(head[hfs0OffsetField-headerOffset:], uint64(rootHFS0Offset))

	img := make([]byte, headerOffset)
	img = append(img, head...)
	img = append(img, root...)
	return img
}

func TestOpenXCIParsesCardSizeAndPartitions(t *testing.T) {
	cases := []struct {
		name     string
		cardSize CardSize
	}{
		{name: "1GB", cardSize: CardSize1GB},
		{name: "32GB", cardSize: CardSize32GB},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			files := map[string][]byte{"program.nca": []byte("NCA-BYTES")}
			img := buildXCI(c.cardSize, "secure", files, []string{"program.nca"})

			xci, err := OpenXCI(readable.NewMemoryRegion(img))
			if err != nil {
				t.Fatalf("OpenXCI: %v", err)
			}
			if xci.CardSize != c.cardSize {
				t.Fatalf("CardSize = %v, want %v", xci.CardSize, c.cardSize)
			}

			secure, ok := xci.Partition("secure")
			if !ok {
				t.Fatal("expected a 'secure' partition")
			}
			item, ok := secure.GetItem("program.nca")
			if !ok {
				t.Fatal("expected program.nca inside secure partition")
			}
			got, err := item.PeekAt(0, int64(len(files["program.nca"])))
			if err != nil {
				t.Fatalf("PeekAt: %v", err)
			}
			if string(got) != "NCA-BYTES" {
				t.Fatalf("got %q, want %q", got, "NCA-BYTES")
			}
		})
	}
}

func TestOpenXCIMissingPartitionReturnsFalse(t *testing.T) {
	img := buildXCI(CardSize1GB, "secure", map[string][]byte{"x": []byte("y")}, []string{"x"})
	xci, err := OpenXCI(readable.NewMemoryRegion(img))
	if err != nil {
		t.Fatalf("OpenXCI: %v", err)
	}
	if _, ok := xci.Partition("normal"); ok {
		t.Fatal("expected no 'normal' partition")
	}
}

func TestOpenXCIRejectsBadMagic(t *testing.T) {
	img := make([]byte, int(headerOffset)+xciHeaderSize)
	copy(img[headerOffset:headerOffset+4], "XXXX")
	if _, err := OpenXCI(readable.NewMemoryRegion(img)); err == nil {
		t.Fatal("expected error for invalid HEAD magic")
	}
}
