// Package container implements the two top-level ROM container formats
// (spec.md §4.8): NSP, a bare PFS0 whose entries are NCAs (and
// optionally tickets/certificates this module does not interpret), and
// XCI, a game-card image whose HEAD header points at a root HFS0 of
// named sub-partitions.
//
// Grounded on falk-nsz-go's pattern of opening a PFS0 directly on a
// file-backed reader (pkg/fs/pfs0.go + main.go), and on
// original_source/nxroms/rom/xci.py for the XCI HEAD header layout,
// CardSize enum, and named-partition lookup.
package container

import (
	"strings"

	"github.com/XtremeTHN/nxroms/pkg/pfs0"
	"github.com/XtremeTHN/nxroms/pkg/readable"
)

// NSP is a PFS0 container whose .nca-suffixed entries are the title's
// content archives (spec.md §4.8).
type NSP struct {
	pfs *pfs0.Reader
}

// OpenNSP parses src as a bare PFS0 container.
func OpenNSP(src readable.Reader) (*NSP, error) {
	pfs, err := pfs0.Open(src)
	if err != nil {
		return nil, err
	}
	return &NSP{pfs: pfs}, nil
}

// GetNCAs returns the name and data sub-region of every entry whose
// name ends in ".nca", in table order.
func (n *NSP) GetNCAs() []struct {
	Name   string
	Region *readable.Region
} {
	var out []struct {
		Name   string
		Region *readable.Region
	}
	for _, item := range n.pfs.GetItems() {
		if strings.HasSuffix(item.Name, ".nca") {
			out = append(out, item)
		}
	}
	return out
}

// Entries returns every entry in the NSP (NCAs, tickets, certificates).
func (n *NSP) Entries() []pfs0.Entry { return n.pfs.Entries() }
