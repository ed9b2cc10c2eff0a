package catalog

// Optional is a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// SongPatch is a sparse update applied to several songs at once.
// Only present fields are written; absent fields leave the song untouched.
// A present Artwork holding nil clears the artwork.
type SongPatch struct {
	Version  Optional[string]
	Creators Optional[[]string]
	Artwork  Optional[[]byte]
}

// IsEmpty reports whether the patch changes nothing.
func (p SongPatch) IsEmpty() bool {
	return !p.Version.IsSet() && !p.Creators.IsSet() && !p.Artwork.IsSet()
}

// Fields returns the names of the fields the patch writes.
func (p SongPatch) Fields() []string {
	var fields []string
	if p.Version.IsSet() {
		fields = append(fields, "version")
	}
	if p.Creators.IsSet() {
		fields = append(fields, "creators")
	}
	if p.Artwork.IsSet() {
		fields = append(fields, "artwork")
	}
	return fields
}

func (p SongPatch) apply(s *Song) {
	if v, ok := p.Version.Get(); ok {
		s.Version = v
	}
	if c, ok := p.Creators.Get(); ok {
		s.Creators = cloneSlice(c)
	}
	if a, ok := p.Artwork.Get(); ok {
		s.Artwork = cloneSlice(a)
	}
}
