// Package nca implements the NCA header decryptor and parser (spec.md
// §4.4), the FS-entry/FS-section-header tables, and the FS-section
// opener (spec.md §4.5) that turns a decrypted header plus the NCA's
// raw body into an AES-CTR-transparent Region over a PFS0 or RomFS.
//
// Grounded on falk-nsz-go/pkg/fs/nca_header.go (sector-wise AES-XTS
// header decrypt, binary field layout) generalized to the full field
// set of spec.md §3, cross-checked against
// original_source/nxroms/nca/header.py for the key-generation
// resolution rule and rights-ID gating.
package nca

import (
	"errors"
	"fmt"

	"github.com/XtremeTHN/nxroms/pkg/binfield"
	"github.com/XtremeTHN/nxroms/pkg/crypto"
	"github.com/XtremeTHN/nxroms/pkg/keys"
	"github.com/XtremeTHN/nxroms/pkg/readable"
)

const (
	// HeaderSize is the size of the plaintext NCA header after AES-XTS
	// decryption (spec.md §3): two 0x200-byte main-header blocks plus
	// four 0x200-byte FS-section headers.
	HeaderSize = 0xC00
	// headerSectorSize is the AES-XTS sector size used to decrypt the
	// header (spec.md §4.4 step 1).
	headerSectorSize = 0x200
	// mediaUnitSize converts FS-entry media units to bytes (spec.md
	// §3, GLOSSARY "Media unit").
	mediaUnitSize = 0x200

	fsEntryTableOffset  = 0x240
	fsEntrySize         = 0x10
	keyAreaOffset       = 0x300
	keyAreaSize         = 0x40
	fsHeaderTableOffset = 0x400
	fsHeaderSize        = 0x200
)

// ErrInvalidNCA is spec.md §7's INVALID_NCA: the decrypted header's
// magic at 0x200 was not "NCA3".
var ErrInvalidNCA = errors.New("nca: invalid magic, expected NCA3")

// ErrRightsTicketUnsupported is returned when a caller needs the key
// area (e.g. the AES-CTR key for FS-section decryption) on an NCA whose
// RightsID is present: ticket-based title-key derivation is out of
// scope (spec.md §1 Non-goals).
var ErrRightsTicketUnsupported = errors.New("nca: rights-ticketed NCA key derivation not supported")

// FsEntry is one of the NCA header's 4 FS-entry slots (spec.md §3):
// media-unit start/end offsets converted to bytes, plus the slot index
// used to pair it with its FsHeader.
type FsEntry struct {
	Index      int
	StartByte  uint64
	EndByte    uint64
}

// KeyArea is the decrypted 0x40-byte key area (spec.md §3): an XTS key,
// a CTR key, and an unknown trailing 16 bytes. Nil when the NCA is
// rights-ticketed (spec.md §4.4 step 4).
type KeyArea struct {
	AesXtsKey []byte // 0x20
	AesCtrKey []byte // 0x10
	Unknown   []byte // 0x10
}

// Header is the fully parsed, decrypted NCA header.
type Header struct {
	DistributionType          DistributionType
	ContentType               ContentType
	KeyGenerationOld          KeyGenerationOld
	KeyAreaEncryptionKeyIndex KeyAreaEncryptionKeyIndex
	ContentSize               uint64
	ProgramID                 uint64
	ContentIndex              uint32
	SdkVersion                string
	KeyGeneration             byte
	// RightsID is nil when all-zero ("not-rights-ticketed", spec.md §3).
	RightsID []byte

	FsEntries  []FsEntry
	FsHeaders  []FsHeader
	KeyArea    *KeyArea

	raw []byte // decrypted 0xC00-byte header, retained for the NCA's lifetime
}

// EffectiveKeyGeneration resolves spec.md §4.4 step 4's
// max(key_generation_old, key_generation) - 1 (clamped at 0) rule.
// Confirmed against original_source/nxroms/nca/header.py:
// get_key_generation (DESIGN.md Open Question decisions).
func (h *Header) EffectiveKeyGeneration() int {
	old := int(h.KeyGenerationOld)
	gen := int(h.KeyGeneration)
	eff := old
	if gen > old {
		eff = gen
	}
	if eff > 0 {
		eff--
	}
	return eff
}

// ParseHeader decrypts and parses the first HeaderSize bytes of an NCA
// from r (spec.md §4.4). store supplies header_key and the key-area-key
// tiers.
func ParseHeader(r readable.Reader, store *keys.Store) (*Header, error) {
	encrypted, err := r.PeekAt(0, HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("nca: read header: %w", err)
	}
	if len(encrypted) != HeaderSize {
		return nil, fmt.Errorf("nca: short header read: got %d bytes", len(encrypted))
	}

	headerKey := store.Get("header_key")
	if headerKey == nil {
		return nil, fmt.Errorf("nca: header_key not found in key store")
	}

	decrypted, err := crypto.XTSDecrypt(encrypted, headerKey, headerSectorSize, 0)
	if err != nil {
		return nil, fmt.Errorf("nca: decrypt header: %w", err)
	}

	main := decrypted[0x200:0x400]
	if string(main[0:4]) != "NCA3" {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidNCA, main[0:4])
	}

	h := &Header{raw: decrypted}
	if err := h.parseMain(main); err != nil {
		return nil, err
	}
	h.parseFsEntries(decrypted[fsEntryTableOffset : fsEntryTableOffset+4*fsEntrySize])
	if err := h.parseFsHeaders(decrypted); err != nil {
		return nil, err
	}
	if err := h.decryptKeyArea(decrypted[keyAreaOffset:keyAreaOffset+keyAreaSize], store); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) parseMain(main []byte) error {
	h.DistributionType = DistributionType(binfield.U8(main, 0x04))
	if !h.DistributionType.Valid() {
		return &InvalidEnumError{Field: "distribution_type", Value: byte(h.DistributionType)}
	}
	h.ContentType = ContentType(binfield.U8(main, 0x05))
	if !h.ContentType.Valid() {
		return &InvalidEnumError{Field: "content_type", Value: byte(h.ContentType)}
	}
	h.KeyGenerationOld = KeyGenerationOld(binfield.U8(main, 0x06))
	if !h.KeyGenerationOld.Valid() {
		return &InvalidEnumError{Field: "key_generation_old", Value: byte(h.KeyGenerationOld)}
	}
	h.KeyAreaEncryptionKeyIndex = KeyAreaEncryptionKeyIndex(binfield.U8(main, 0x07))
	if !h.KeyAreaEncryptionKeyIndex.Valid() {
		return &InvalidEnumError{Field: "key_area_encryption_key_index", Value: byte(h.KeyAreaEncryptionKeyIndex)}
	}

	h.ContentSize = binfield.U64(main, 0x08)
	h.ProgramID = binfield.U64(main, 0x10)
	h.ContentIndex = binfield.U32(main, 0x18)

	sdk := binfield.Bytes(main, 0x1C, 4)
	h.SdkVersion = fmt.Sprintf("%d.%d.%d.0", sdk[3], sdk[2], sdk[1])

	h.KeyGeneration = binfield.U8(main, 0x20)

	rightsID := binfield.Bytes(main, 0x30, 0x10)
	if !binfield.IsAllZero(rightsID) {
		h.RightsID = rightsID
	}
	return nil
}

func (h *Header) parseFsEntries(b []byte) {
	for i := 0; i < 4; i++ {
		off := i * fsEntrySize
		startMedia := binfield.U32(b, off)
		endMedia := binfield.U32(b, off+4)
		if startMedia == 0 && endMedia == 0 {
			continue
		}
		h.FsEntries = append(h.FsEntries, FsEntry{
			Index:     i,
			StartByte: uint64(startMedia) * mediaUnitSize,
			EndByte:   uint64(endMedia) * mediaUnitSize,
		})
	}
}

func (h *Header) parseFsHeaders(decrypted []byte) error {
	for i := 0; i < 4; i++ {
		off := fsHeaderTableOffset + i*fsHeaderSize
		slice := decrypted[off : off+fsHeaderSize]
		if binfield.IsAllZero(slice) {
			continue
		}
		fh, err := parseFsHeader(slice, i)
		if err != nil {
			return err
		}
		h.FsHeaders = append(h.FsHeaders, fh)
	}
	return nil
}

// decryptKeyArea implements spec.md §4.4 step 4: skipped (KeyArea left
// nil) when RightsID is present, since ticket-based title-key
// derivation is out of scope.
func (h *Header) decryptKeyArea(encrypted []byte, store *keys.Store) error {
	if h.RightsID != nil {
		return nil
	}

	var tier keys.KeyAreaTier
	switch h.KeyAreaEncryptionKeyIndex {
	case KeyAreaIndexApplication:
		tier = keys.KeyAreaApplication
	case KeyAreaIndexOcean:
		tier = keys.KeyAreaOcean
	case KeyAreaIndexSystem:
		tier = keys.KeyAreaSystem
	}

	key := store.KeyAreaKey(tier, h.EffectiveKeyGeneration())
	if key == nil {
		return fmt.Errorf("nca: no key_area_key_%s_%02x available", h.KeyAreaEncryptionKeyIndex, h.EffectiveKeyGeneration())
	}

	plain, err := crypto.ECBDecrypt(encrypted, key)
	if err != nil {
		return fmt.Errorf("nca: decrypt key area: %w", err)
	}

	h.KeyArea = &KeyArea{
		AesXtsKey: plain[0x00:0x20],
		AesCtrKey: plain[0x20:0x30],
		Unknown:   plain[0x30:0x40],
	}
	return nil
}

// FsEntryFor returns the FsEntry sharing the FsHeader's table index, or
// false if none survived zero-filtering (spec.md §4.5 step 1).
func (h *Header) FsEntryFor(fh FsHeader) (FsEntry, bool) {
	for _, e := range h.FsEntries {
		if e.Index == fh.Index {
			return e, true
		}
	}
	return FsEntry{}, false
}
