package readable

import "github.com/XtremeTHN/nxroms/pkg/crypto"

// CtrRegion is an AES-CTR-transparent sub-region: reads are decrypted
// on the fly against the parent's raw bytes, block-aligning around the
// requested range per spec.md §4.3.
type CtrRegion struct {
	parent   Reader
	start    int64 // absolute offset in parent's address space
	end      int64 // absolute offset, exclusive
	key      []byte
	ctrUpper uint64
	pos      int64 // cursor, relative to start
}

// NewCtrRegion returns a CtrRegion over the parent's absolute byte range
// [start, end), decrypting with a 128-bit AES-CTR key and the 64-bit
// high word of the counter taken from the owning FS-section header.
func NewCtrRegion(parent Reader, start, end int64, key []byte, ctrUpper uint64) *CtrRegion {
	return &CtrRegion{parent: parent, start: start, end: end, key: key, ctrUpper: ctrUpper}
}

func (c *CtrRegion) Size() int64 { return c.end - c.start }
func (c *CtrRegion) Tell() int64 { return c.pos }

func (c *CtrRegion) Seek(offset int64) error {
	if offset < 0 || offset > c.Size() {
		return ErrOutOfBounds
	}
	c.pos = offset
	return nil
}

func (c *CtrRegion) Skip(n int64) error { return c.Seek(c.pos + n) }

func alignDown(v, align int64) int64 { return v &^ (align - 1) }
func alignUp(v, align int64) int64   { return (v + align - 1) &^ (align - 1) }

// Read implements spec.md §4.3 steps 1-6: block-align the absolute
// range down/up to 16-byte boundaries, peek the raw ciphertext from the
// parent, decrypt the whole aligned block, and slice out the requested
// window.
func (c *CtrRegion) Read(n int64) ([]byte, error) {
	absolute := c.start + c.pos
	if absolute >= c.end {
		return nil, nil
	}

	n = clamp(c.pos, n, c.Size())
	if n == 0 {
		return nil, nil
	}

	alignedStart := alignDown(absolute, 0x10)
	delta := absolute - alignedStart
	rawLen := alignUp(n+delta, 0x10)

	raw, err := c.parent.PeekAt(alignedStart, rawLen)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	iv := crypto.IVFromUint128(c.ctrUpper, uint64(alignedStart>>4))
	decrypted, err := crypto.CTRDecrypt(c.key, iv, raw)
	if err != nil {
		return nil, err
	}

	end := delta + n
	if end > int64(len(decrypted)) {
		end = int64(len(decrypted))
	}
	if delta > end {
		return nil, nil
	}
	result := decrypted[delta:end]
	c.pos += int64(len(result))
	return result, nil
}

func (c *CtrRegion) ReadAt(offset, n int64) ([]byte, error) {
	if err := c.Seek(offset); err != nil {
		return nil, err
	}
	return c.Read(n)
}

func (c *CtrRegion) Peek(n int64) ([]byte, error) {
	save := c.pos
	out, err := c.Read(n)
	c.pos = save
	return out, err
}

func (c *CtrRegion) PeekAt(offset, n int64) ([]byte, error) {
	save := c.pos
	out, err := c.ReadAt(offset, n)
	c.pos = save
	return out, err
}

func (c *CtrRegion) ReadUnpack(n int) (uint64, error) {
	b, err := c.Read(int64(n))
	if err != nil {
		return 0, err
	}
	return unpackLE(b, n)
}

func (c *CtrRegion) ReadUnpackAt(offset int64, n int) (uint64, error) {
	b, err := c.PeekAt(offset, int64(n))
	if err != nil {
		return 0, err
	}
	return unpackLE(b, n)
}

// AbsoluteStart returns the region's start offset within its parent's
// address space.
func (c *CtrRegion) AbsoluteStart() int64 { return c.start }
