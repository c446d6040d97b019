package domain

// Contacts is an ordered mapping from contact name to that contact's entries.
// Iteration order is the order in which names were first inserted; replacing
// the entries of an existing name keeps its position.
//
// A Contacts value is built once through ContactsBuilder and is read-only
// afterwards.
type Contacts[T any] struct {
	names   []string
	entries map[string][]T
}

// Len returns the number of contacts.
func (c Contacts[T]) Len() int { return len(c.names) }

// Names returns the contact names in iteration order.
func (c Contacts[T]) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Get returns a copy of the entries recorded for name.
func (c Contacts[T]) Get(name string) ([]T, bool) {
	v, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	out := make([]T, len(v))
	copy(out, v)
	return out, true
}

// Each calls fn for every contact in iteration order.
func (c Contacts[T]) Each(fn func(name string, entries []T)) {
	for _, name := range c.names {
		fn(name, c.entries[name])
	}
}

// MapContacts derives a new mapping by transforming every entry of every
// contact. Names and order are preserved, and each contact keeps exactly as
// many entries as it had.
func MapContacts[T, U any](in Contacts[T], fn func(T) U) Contacts[U] {
	b := NewContactsBuilder[U]()
	in.Each(func(name string, entries []T) {
		out := make([]U, len(entries))
		for i, e := range entries {
			out[i] = fn(e)
		}
		b.Set(name, out)
	})
	return b.Build()
}

// ContactsBuilder accumulates a Contacts mapping.
type ContactsBuilder[T any] struct {
	names   []string
	entries map[string][]T
}

// NewContactsBuilder returns an empty builder.
func NewContactsBuilder[T any]() *ContactsBuilder[T] {
	return &ContactsBuilder[T]{entries: make(map[string][]T)}
}

// Len returns the number of names recorded so far.
func (b *ContactsBuilder[T]) Len() int { return len(b.names) }

// Has reports whether name has been recorded.
func (b *ContactsBuilder[T]) Has(name string) bool {
	_, ok := b.entries[name]
	return ok
}

// Set records entries for name, replacing any earlier value.
func (b *ContactsBuilder[T]) Set(name string, entries []T) {
	if _, ok := b.entries[name]; !ok {
		b.names = append(b.names, name)
	}
	cp := make([]T, len(entries))
	copy(cp, entries)
	b.entries[name] = cp
}

// Append adds entries after those already recorded for name.
func (b *ContactsBuilder[T]) Append(name string, entries []T) {
	if _, ok := b.entries[name]; !ok {
		b.names = append(b.names, name)
	}
	b.entries[name] = append(b.entries[name], entries...)
}

// Build returns the accumulated mapping. The builder must not be used after.
func (b *ContactsBuilder[T]) Build() Contacts[T] {
	out := Contacts[T]{
		names:   b.names,
		entries: b.entries,
	}
	b.names = nil
	b.entries = nil
	return out
}
