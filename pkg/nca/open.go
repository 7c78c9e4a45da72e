package nca

import (
	"errors"
	"fmt"

	"github.com/XtremeTHN/nxroms/pkg/readable"
)

// ErrUnsupportedEncryption is spec.md §7's UNSUPPORTED_ENCRYPTION(type):
// the FS section's encryption_type is anything other than AesCtr.
var ErrUnsupportedEncryption = errors.New("nca: unsupported fs section encryption type")

// OpenFsSection implements spec.md §4.5: resolve the FsEntry sharing
// fh's table index, reject anything but AES_CTR encryption, compute the
// section's start offset from its hash data, and return an AES-CTR
// transparent Region over [start, FsEntry.EndByte) of body.
//
// body must be the raw (still AES-CTR-encrypted) NCA content reader —
// i.e. a readable.Reader over the whole NCA file, since FsEntry offsets
// and the CTR IV are both relative to the start of the NCA, not the
// header.
func (h *Header) OpenFsSection(body readable.Reader, fh FsHeader) (*readable.CtrRegion, error) {
	entry, ok := h.FsEntryFor(fh)
	if !ok {
		return nil, fmt.Errorf("nca: no fs entry for section %d", fh.Index)
	}

	if fh.EncryptionType != EncryptionAesCtr {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncryption, fh.EncryptionType)
	}

	if h.KeyArea == nil {
		if h.RightsID != nil {
			return nil, ErrRightsTicketUnsupported
		}
		return nil, fmt.Errorf("nca: key area not decrypted")
	}

	fsStart, err := sectionStart(fh)
	if err != nil {
		return nil, err
	}

	absoluteStart := int64(entry.StartByte) + fsStart
	absoluteEnd := int64(entry.EndByte)

	return readable.NewCtrRegion(body, absoluteStart, absoluteEnd, h.KeyArea.AesCtrKey, fh.CtrUpper), nil
}

// sectionStart computes spec.md §4.5 step 3's fs_start, relative to the
// FsEntry's own byte range: the last IVFC level's logical_offset for
// HierarchicalIntegrity, or the second layer region's offset for
// HierarchicalSha256 (layer 0 is the master hash block, layer 1 is the
// data region per spec.md §3).
func sectionStart(fh FsHeader) (int64, error) {
	switch {
	case fh.HashData.Integrity != nil:
		last := fh.HashData.Integrity.Levels[len(fh.HashData.Integrity.Levels)-1]
		return int64(last.LogicalOffset), nil
	case fh.HashData.Sha256 != nil:
		if len(fh.HashData.Sha256.LayerRegions) < 2 {
			return 0, fmt.Errorf("nca: sha256 hash data missing data layer region")
		}
		return int64(fh.HashData.Sha256.LayerRegions[1].Offset), nil
	default:
		return 0, ErrInvalidHashType
	}
}

// FsHeaderByIndex returns the FsHeader with the given table index, or
// false if it was zero-filtered at parse time.
func (h *Header) FsHeaderByIndex(index int) (FsHeader, bool) {
	for _, fh := range h.FsHeaders {
		if fh.Index == index {
			return fh, true
		}
	}
	return FsHeader{}, false
}
