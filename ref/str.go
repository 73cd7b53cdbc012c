package ref

// Str is a shared handle to immutable byte storage built from a string.
// A thin specialization of Slice[byte] with string-shaped accessors.
type Str struct {
	s Slice[byte]
}

// NewStr copies v into a fresh block and returns its first handle.
func NewStr(v string) Str { return NewStrIn(v, nil) }

// NewStrIn is NewStr with explicit allocation options.
func NewStrIn(v string, o *Options) Str {
	return Str{s: NewSliceIn([]byte(v), o)}
}

// Len returns the byte length.
func (s Str) Len() int { return s.s.Len() }

// Bytes returns the stored bytes as a view over the block. Treat it as
// read-only; it stays valid while some handle is live.
func (s Str) Bytes() []byte { return s.s.View() }

// String copies the stored bytes out into a Go string.
func (s Str) String() string { return string(s.s.View()) }

// Clone returns an additional owning handle.
func (s Str) Clone() Str { return Str{s: s.s.Clone()} }

// Release drops this handle's count unit and nils the handle.
func (s *Str) Release() { s.s.Release() }

// IsUnique reports whether this handle is the only one to its block.
func (s Str) IsUnique() bool { return s.s.IsUnique() }

// StrPtrEqual reports whether a and b own the same block.
func StrPtrEqual(a, b Str) bool { return SlicePtrEqual(a.s, b.s) }
