package readable

// MemoryRegion is a Reader backed by an owned in-memory byte slice.
type MemoryRegion struct {
	buf []byte
	pos int64
}

// NewMemoryRegion wraps buf as a Reader. The slice is not copied; callers
// should not mutate it afterward.
func NewMemoryRegion(buf []byte) *MemoryRegion {
	return &MemoryRegion{buf: buf}
}

func (m *MemoryRegion) Size() int64 { return int64(len(m.buf)) }
func (m *MemoryRegion) Tell() int64 { return m.pos }

func (m *MemoryRegion) Seek(offset int64) error {
	if offset < 0 || offset > m.Size() {
		return ErrOutOfBounds
	}
	m.pos = offset
	return nil
}

func (m *MemoryRegion) Skip(n int64) error { return m.Seek(m.pos + n) }

func (m *MemoryRegion) Read(n int64) ([]byte, error) {
	n = clamp(m.pos, n, m.Size())
	out := make([]byte, n)
	copy(out, m.buf[m.pos:m.pos+n])
	m.pos += n
	return out, nil
}

func (m *MemoryRegion) ReadAt(offset, n int64) ([]byte, error) {
	if err := m.Seek(offset); err != nil {
		return nil, err
	}
	return m.Read(n)
}

func (m *MemoryRegion) Peek(n int64) ([]byte, error) {
	save := m.pos
	out, err := m.Read(n)
	m.pos = save
	return out, err
}

func (m *MemoryRegion) PeekAt(offset, n int64) ([]byte, error) {
	save := m.pos
	out, err := m.ReadAt(offset, n)
	m.pos = save
	return out, err
}

func (m *MemoryRegion) ReadUnpack(n int) (uint64, error) {
	b, err := m.Read(int64(n))
	if err != nil {
		return 0, err
	}
	return unpackLE(b, n)
}

func (m *MemoryRegion) ReadUnpackAt(offset int64, n int) (uint64, error) {
	b, err := m.PeekAt(offset, int64(n))
	if err != nil {
		return 0, err
	}
	return unpackLE(b, n)
}

// Bytes returns the full backing slice (no copy).
func (m *MemoryRegion) Bytes() []byte { return m.buf }
