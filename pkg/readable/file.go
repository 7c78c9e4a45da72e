package readable

import "os"

// FileRegion wraps an *os.File as the root Reader of a reader stack. It
// owns the file handle and must outlive every sub-region derived from it.
type FileRegion struct {
	f    *os.File
	size int64
	pos  int64
}

// OpenFile opens path and returns a FileRegion sized to the file's
// current length.
func OpenFile(path string) (*FileRegion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileRegion{f: f, size: info.Size()}, nil
}

// NewFileRegion wraps an already-open file handle.
func NewFileRegion(f *os.File) (*FileRegion, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &FileRegion{f: f, size: info.Size()}, nil
}

// Close releases the underlying OS file handle.
func (r *FileRegion) Close() error { return r.f.Close() }

func (r *FileRegion) Size() int64 { return r.size }
func (r *FileRegion) Tell() int64 { return r.pos }

func (r *FileRegion) Seek(offset int64) error {
	if offset < 0 || offset > r.size {
		return ErrOutOfBounds
	}
	r.pos = offset
	return nil
}

func (r *FileRegion) Skip(n int64) error { return r.Seek(r.pos + n) }

func (r *FileRegion) Read(n int64) ([]byte, error) {
	n = clamp(r.pos, n, r.size)
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := r.f.ReadAt(buf, r.pos)
	r.pos += int64(read)
	if err != nil && read == 0 {
		return nil, err
	}
	return buf[:read], nil
}

func (r *FileRegion) ReadAt(offset, n int64) ([]byte, error) {
	if err := r.Seek(offset); err != nil {
		return nil, err
	}
	return r.Read(n)
}

func (r *FileRegion) Peek(n int64) ([]byte, error) {
	save := r.pos
	out, err := r.Read(n)
	r.pos = save
	return out, err
}

func (r *FileRegion) PeekAt(offset, n int64) ([]byte, error) {
	save := r.pos
	out, err := r.ReadAt(offset, n)
	r.pos = save
	return out, err
}

func (r *FileRegion) ReadUnpack(n int) (uint64, error) {
	b, err := r.Read(int64(n))
	if err != nil {
		return 0, err
	}
	return unpackLE(b, n)
}

func (r *FileRegion) ReadUnpackAt(offset int64, n int) (uint64, error) {
	b, err := r.PeekAt(offset, int64(n))
	if err != nil {
		return 0, err
	}
	return unpackLE(b, n)
}
