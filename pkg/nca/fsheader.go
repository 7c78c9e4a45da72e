package nca

import (
	"errors"
	"fmt"

	"github.com/XtremeTHN/nxroms/pkg/binfield"
)

// ErrInvalidHashType is spec.md §7's INVALID_HASH_TYPE.
var ErrInvalidHashType = errors.New("nca: fs section hash type is neither integrity nor sha256")

// LayerRegion is one entry of HierarchicalSha256Data's layer table
// (spec.md §3).
type LayerRegion struct {
	Offset uint64
	Size   uint64
}

// HierarchicalSha256Data is the hash-data variant tagged by
// HashTypeHierarchicalSha256 (spec.md §3).
type HierarchicalSha256Data struct {
	MasterHash   [32]byte
	BlockSize    uint32
	LayerCount   uint32
	LayerRegions []LayerRegion
}

func parseHierarchicalSha256(b []byte) HierarchicalSha256Data {
	var d HierarchicalSha256Data
	copy(d.MasterHash[:], b[0:0x20])
	d.BlockSize = binfield.U32(b, 0x20)
	d.LayerCount = binfield.U32(b, 0x24)

	d.LayerRegions = make([]LayerRegion, d.LayerCount)
	off := 0x28
	for i := range d.LayerRegions {
		d.LayerRegions[i] = LayerRegion{
			Offset: binfield.U64(b, off),
			Size:   binfield.U64(b, off+8),
		}
		off += 0x10
	}
	return d
}

// IntegrityLevel is one of HierarchicalIntegrity's 6 level descriptors
// (spec.md §3).
type IntegrityLevel struct {
	LogicalOffset uint64
	HashDataSize  uint64
	BlockSizeLog2 uint32
}

// HierarchicalIntegrity is the IVFC hash-data variant tagged by
// HashTypeHierarchicalIntegrity (spec.md §3).
type HierarchicalIntegrity struct {
	Magic          [4]byte
	Version        uint32
	MasterHashSize uint32
	Levels         [6]IntegrityLevel
	// Salt is nil when the 32-byte salt field is all-zero (spec.md §3:
	// "salt (32 bytes, all-zero => absent)").
	Salt []byte
}

func parseHierarchicalIntegrity(b []byte) (HierarchicalIntegrity, error) {
	var iv HierarchicalIntegrity
	copy(iv.Magic[:], b[0:4])
	if string(iv.Magic[:]) != "IVFC" {
		return iv, fmt.Errorf("nca: invalid ivfc magic: %q", iv.Magic[:])
	}
	iv.Version = binfield.U32(b, 4)
	iv.MasterHashSize = binfield.U32(b, 8)

	off := 0xC + 0x4 // info_level_hash starts at 0xC, max_layer field is 4 bytes
	for i := range iv.Levels {
		iv.Levels[i] = IntegrityLevel{
			LogicalOffset: binfield.U64(b, off),
			HashDataSize:  binfield.U64(b, off+8),
			BlockSizeLog2: binfield.U32(b, off+0x10),
		}
		off += 0x18
	}

	salt := binfield.Bytes(b, 0xC+0x94, 0x20)
	if !binfield.IsAllZero(salt) {
		iv.Salt = salt
	}
	return iv, nil
}

// HashData is the tagged union over the two hash-data shapes spec.md
// §3/§9 models: exactly one of Sha256/Integrity is non-nil, selected by
// the owning FsHeader's HashType.
type HashData struct {
	Sha256    *HierarchicalSha256Data
	Integrity *HierarchicalIntegrity
}

// FsHeader is one of the NCA's up to 4 FS-section headers (spec.md §3).
type FsHeader struct {
	Index          int
	FsType         FsType
	HashType       HashType
	EncryptionType EncryptionType
	MetaHashType   MetaDataHashType
	CtrUpper       uint64
	HashData       HashData
}

// parseFsHeader parses a 0x200-byte FS-section header slice (decrypted
// NCA header bytes [0x400+index*0x200, +0x200)), spec.md §3.
func parseFsHeader(b []byte, index int) (FsHeader, error) {
	h := FsHeader{
		Index:          index,
		FsType:         FsType(binfield.U8(b, 0x02)),
		HashType:       HashType(binfield.U8(b, 0x03)),
		EncryptionType: EncryptionType(binfield.U8(b, 0x04)),
		MetaHashType:   MetaDataHashType(binfield.U8(b, 0x05)),
		CtrUpper:       binfield.U64(b, 0x140),
	}

	// Unlike the enums with a fixed known set (ContentType, DistributionType,
	// ...), an unrecognized hash_type is not a parse-time failure: spec.md
	// §4.4 step 6 only asks to parse and tag the header; §4.5 step 3 is
	// where an FS section with a hash type other than the two known
	// variants fails, with ErrInvalidHashType.
	hashData := binfield.Bytes(b, 0x08, 0xF8)
	switch h.HashType {
	case HashTypeHierarchicalIntegrity:
		iv, err := parseHierarchicalIntegrity(hashData)
		if err != nil {
			return h, err
		}
		h.HashData.Integrity = &iv
	case HashTypeHierarchicalSha256:
		sha := parseHierarchicalSha256(hashData)
		h.HashData.Sha256 = &sha
	}

	return h, nil
}
