package nca

import "fmt"

// InvalidEnumError is spec.md §7's INVALID_ENUM(field, value): a
// one-byte discriminant in the NCA header took a value this module
// doesn't recognize.
type InvalidEnumError struct {
	Field string
	Value byte
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("nca: invalid %s: 0x%02x", e.Field, e.Value)
}

// DistributionType is the NCA header's byte at 0x204.
type DistributionType byte

const (
	DistributionDownload DistributionType = 0x00
	DistributionGameCard DistributionType = 0x01
)

func (d DistributionType) Valid() bool {
	return d == DistributionDownload || d == DistributionGameCard
}

func (d DistributionType) String() string {
	switch d {
	case DistributionDownload:
		return "Download"
	case DistributionGameCard:
		return "GameCard"
	default:
		return fmt.Sprintf("DistributionType(0x%02x)", byte(d))
	}
}

// ContentType is the NCA header's byte at 0x205.
type ContentType byte

const (
	ContentProgram    ContentType = 0x00
	ContentMeta       ContentType = 0x01
	ContentControl    ContentType = 0x02
	ContentManual     ContentType = 0x03
	ContentData       ContentType = 0x04
	ContentPublicData ContentType = 0x05
)

func (c ContentType) Valid() bool {
	return c <= ContentPublicData
}

func (c ContentType) String() string {
	switch c {
	case ContentProgram:
		return "Program"
	case ContentMeta:
		return "Meta"
	case ContentControl:
		return "Control"
	case ContentManual:
		return "Manual"
	case ContentData:
		return "Data"
	case ContentPublicData:
		return "PublicData"
	default:
		return fmt.Sprintf("ContentType(0x%02x)", byte(c))
	}
}

// KeyGenerationOld is the NCA header's byte at 0x206, the legacy
// key-generation field (it carries generations up to 3.0.0), superseded
// by KeyGeneration (0x220) from 3.0.1 on.
type KeyGenerationOld byte

const (
	KeyGenOld100    KeyGenerationOld = 0x00
	KeyGenOldUnused KeyGenerationOld = 0x01
	KeyGenOld300    KeyGenerationOld = 0x02
)

func (k KeyGenerationOld) Valid() bool {
	return k <= KeyGenOld300
}

// KeyAreaEncryptionKeyIndex is the NCA header's byte at 0x207, selecting
// which of the three key-area-key tiers decrypts the key area.
type KeyAreaEncryptionKeyIndex byte

const (
	KeyAreaIndexApplication KeyAreaEncryptionKeyIndex = 0x00
	KeyAreaIndexOcean       KeyAreaEncryptionKeyIndex = 0x01
	KeyAreaIndexSystem      KeyAreaEncryptionKeyIndex = 0x02
)

func (k KeyAreaEncryptionKeyIndex) Valid() bool {
	return k <= KeyAreaIndexSystem
}

func (k KeyAreaEncryptionKeyIndex) String() string {
	switch k {
	case KeyAreaIndexApplication:
		return "Application"
	case KeyAreaIndexOcean:
		return "Ocean"
	case KeyAreaIndexSystem:
		return "System"
	default:
		return fmt.Sprintf("KeyAreaEncryptionKeyIndex(0x%02x)", byte(k))
	}
}

// keyGenerationLabels names the firmware version each raw key
// generation byte was introduced in, for display only — control flow
// always uses the raw integer (spec.md §4.4, SPEC_FULL.md supplemented
// features, grounded on original_source/nxroms/nca/header.py:
// KeyGeneration).
var keyGenerationLabels = map[byte]string{
	0x00: "1.0.0",
	0x01: "2.0.0",
	0x02: "3.0.0",
	0x03: "3.0.1",
	0x04: "4.0.0",
	0x05: "5.0.0",
	0x06: "6.0.0",
	0x07: "6.2.0",
	0x08: "7.0.0",
	0x09: "8.1.0",
	0x0A: "9.0.0",
	0x0B: "9.1.0",
	0x0C: "12.1.0",
	0x0D: "13.0.0",
	0x0E: "14.0.0",
	0x0F: "15.0.0",
	0x10: "16.0.0",
	0x11: "17.0.0",
	0x12: "18.0.0",
	0x13: "19.0.0",
	0x14: "20.0.0",
	0x15: "21.0.0",
}

// KeyGenerationLabel returns the firmware version a raw key-generation
// byte corresponds to, or "unknown" if unrecognized. Display-only.
func KeyGenerationLabel(gen byte) string {
	if label, ok := keyGenerationLabels[gen]; ok {
		return label
	}
	return "unknown"
}

// FsType is an FS-section header's byte at relative offset 0x02.
type FsType byte

const (
	FsTypeRomFS      FsType = 0x00
	FsTypePartitionFS FsType = 0x01
)

// HashType is an FS-section header's byte at relative offset 0x03.
type HashType byte

const (
	HashTypeAuto                   HashType = 0x00
	HashTypeHierarchicalSha256     HashType = 0x02
	HashTypeHierarchicalIntegrity  HashType = 0x03
)

func (h HashType) Valid() bool {
	switch h {
	case HashTypeAuto, HashTypeHierarchicalSha256, HashTypeHierarchicalIntegrity:
		return true
	default:
		return false
	}
}

// EncryptionType is an FS-section header's byte at relative offset
// 0x04. spec.md §4.5 only ever accepts AesCtr; every other value fails
// with ErrUnsupportedEncryption at section-open time.
type EncryptionType byte

const (
	EncryptionAuto                  EncryptionType = 0x00
	EncryptionNone                  EncryptionType = 0x01
	EncryptionAesXts                EncryptionType = 0x02
	EncryptionAesCtr                EncryptionType = 0x03
	EncryptionAesCtrEx              EncryptionType = 0x04
	EncryptionAesCtrSkipLayerHash    EncryptionType = 0x05
	EncryptionAesCtrExSkipLayerHash  EncryptionType = 0x06
)

func (e EncryptionType) String() string {
	switch e {
	case EncryptionAuto:
		return "Auto"
	case EncryptionNone:
		return "None"
	case EncryptionAesXts:
		return "AesXts"
	case EncryptionAesCtr:
		return "AesCtr"
	case EncryptionAesCtrEx:
		return "AesCtrEx"
	case EncryptionAesCtrSkipLayerHash:
		return "AesCtrSkipLayerHash"
	case EncryptionAesCtrExSkipLayerHash:
		return "AesCtrExSkipLayerHash"
	default:
		return fmt.Sprintf("EncryptionType(0x%02x)", byte(e))
	}
}

// MetaDataHashType is an FS-section header's byte at relative offset
// 0x05.
type MetaDataHashType byte

const (
	MetaDataHashNone               MetaDataHashType = 0x00
	MetaDataHashHierarchicalIntegrity MetaDataHashType = 0x01
)
