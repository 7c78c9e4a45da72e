// Package extract composes the lower layers into spec.md §8's
// end-to-end scenario: given an NSP or XCI, find the title's Control
// NCA, open its RomFS, and decode control.nacp.
package extract

import (
	"errors"
	"fmt"

	"github.com/XtremeTHN/nxroms/pkg/container"
	"github.com/XtremeTHN/nxroms/pkg/keys"
	"github.com/XtremeTHN/nxroms/pkg/nacp"
	"github.com/XtremeTHN/nxroms/pkg/nca"
	"github.com/XtremeTHN/nxroms/pkg/pfs0"
	"github.com/XtremeTHN/nxroms/pkg/readable"
	"github.com/XtremeTHN/nxroms/pkg/romfs"
)

// ErrNoControlNCA is returned when no entry in the container parses as
// an NCA with ContentType Control.
var ErrNoControlNCA = errors.New("extract: no control nca found")

// NCASource is anything that can yield named NCA-backed sub-regions:
// container.NSP.GetNCAs() and an XCI partition's pfs0.Reader.GetItems()
// both satisfy this shape once wrapped by FromNSP or FromPFS0.
type NCASource interface {
	Items() []struct {
		Name   string
		Region *readable.Region
	}
}

// pfsSource adapts a *pfs0.Reader to NCASource.
type pfsSource struct{ r *pfs0.Reader }

func (p pfsSource) Items() []struct {
	Name   string
	Region *readable.Region
} {
	return p.r.GetItems()
}

// FromPFS0 wraps a PFS0/HFS0 reader (an XCI partition's root) as an
// NCASource.
func FromPFS0(r *pfs0.Reader) NCASource { return pfsSource{r: r} }

// nspSource adapts an *container.NSP to NCASource, filtering to its
// .nca-suffixed entries.
type nspSource struct{ n *container.NSP }

func (s nspSource) Items() []struct {
	Name   string
	Region *readable.Region
} {
	return s.n.GetNCAs()
}

// FromNSP wraps an NSP as an NCASource over its .nca-suffixed entries.
func FromNSP(n *container.NSP) NCASource { return nspSource{n: n} }

// FindControlNCA scans src for the first entry whose parsed NCA header
// reports ContentType == Control, returning its opened Header and the
// raw (still-encrypted) reader over its body.
func FindControlNCA(src NCASource, store *keys.Store) (*nca.Header, readable.Reader, error) {
	for _, item := range src.Items() {
		h, err := nca.ParseHeader(item.Region, store)
		if err != nil {
			continue
		}
		if h.ContentType == nca.ContentControl {
			return h, item.Region, nil
		}
	}
	return nil, nil, ErrNoControlNCA
}

// ReadNACP opens the Control NCA's RomFS-typed FS section and decodes
// control.nacp out of it (spec.md §8 scenario 6).
func ReadNACP(h *nca.Header, body readable.Reader) (*nacp.NACP, error) {
	for _, fh := range h.FsHeaders {
		if fh.FsType == nca.FsTypeRomFS {
			section, err := h.OpenFsSection(body, fh)
			if err != nil {
				return nil, fmt.Errorf("extract: open romfs section: %w", err)
			}
			rfs, err := romfs.Open(section)
			if err != nil {
				return nil, fmt.Errorf("extract: open romfs: %w", err)
			}
			region, err := rfs.GetFile("control.nacp")
			if err != nil {
				return nil, fmt.Errorf("extract: find control.nacp: %w", err)
			}
			raw, err := region.PeekAt(0, nacp.Size)
			if err != nil {
				return nil, fmt.Errorf("extract: read control.nacp: %w", err)
			}
			return nacp.Parse(raw)
		}
	}
	return nil, fmt.Errorf("extract: control nca has no romfs section")
}
