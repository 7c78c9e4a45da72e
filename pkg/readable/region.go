package readable

// Region is a bounded, cursor-bearing view over [start, start+size) of a
// parent Reader. Constructing a Region performs no I/O. Reads delegate
// to the parent exclusively through PeekAt so sibling regions sharing a
// parent never disturb each other's cursor.
type Region struct {
	parent Reader
	start  int64
	size   int64
	pos    int64
}

// NewRegion returns a Region over size bytes of parent starting at start.
func NewRegion(parent Reader, start, size int64) *Region {
	return &Region{parent: parent, start: start, size: size}
}

func (r *Region) Size() int64 { return r.size }
func (r *Region) Tell() int64 { return r.pos }

func (r *Region) Seek(offset int64) error {
	if offset < 0 || offset > r.size {
		return ErrOutOfBounds
	}
	r.pos = offset
	return nil
}

func (r *Region) Skip(n int64) error { return r.Seek(r.pos + n) }

func (r *Region) Read(n int64) ([]byte, error) {
	n = clamp(r.pos, n, r.size)
	if n == 0 {
		return nil, nil
	}
	out, err := r.parent.PeekAt(r.start+r.pos, n)
	if err != nil {
		return nil, err
	}
	r.pos += int64(len(out))
	return out, nil
}

func (r *Region) ReadAt(offset, n int64) ([]byte, error) {
	if err := r.Seek(offset); err != nil {
		return nil, err
	}
	return r.Read(n)
}

func (r *Region) Peek(n int64) ([]byte, error) {
	save := r.pos
	out, err := r.Read(n)
	r.pos = save
	return out, err
}

// PeekAt implements the mandatory peek-delegation: it never touches
// r.pos and never disturbs the parent's cursor (via parent.PeekAt).
func (r *Region) PeekAt(offset, n int64) ([]byte, error) {
	n = clamp(offset, n, r.size)
	if n == 0 {
		return nil, nil
	}
	return r.parent.PeekAt(r.start+offset, n)
}

func (r *Region) ReadUnpack(n int) (uint64, error) {
	b, err := r.Read(int64(n))
	if err != nil {
		return 0, err
	}
	return unpackLE(b, n)
}

func (r *Region) ReadUnpackAt(offset int64, n int) (uint64, error) {
	b, err := r.PeekAt(offset, int64(n))
	if err != nil {
		return 0, err
	}
	return unpackLE(b, n)
}

// AbsoluteStart returns the region's start offset within its parent's
// address space, for callers that need to compute absolute offsets
// (e.g. for AES-CTR IV derivation — spec.md §4.3/§4.5).
func (r *Region) AbsoluteStart() int64 { return r.start }

// Parent returns the region's backing Reader.
func (r *Region) Parent() Reader { return r.parent }
