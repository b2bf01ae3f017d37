package navigation

// DefaultFallbackPath is the path used when no binding matches exactly.
const DefaultFallbackPath = "/"

// MatchKind reports how a Match was produced.
type MatchKind int

const (
	// NotFound means neither an exact binding nor the fallback exists.
	NotFound MatchKind = iota
	// Exact means a binding's path equals the pathname.
	Exact
	// Fallback means the fallback binding was used.
	Fallback
)

// String returns a lowercase name for the kind.
func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Fallback:
		return "fallback"
	default:
		return "not_found"
	}
}

// Binding pairs an exact path with renderable content.
type Binding[T any] struct {
	Content T
	Path    string
}

// Match is the result of evaluating a location against a Table.
type Match[T any] struct {
	Content  T
	Location Location
	// Path is the path of the binding that was selected, empty for NotFound.
	Path string
	Kind MatchKind
}

// Matched reports whether a binding was selected (exact or fallback).
func (m Match[T]) Matched() bool {
	return m.Kind != NotFound
}

// Table is an ordered, immutable list of bindings.
type Table[T any] struct {
	notFound     T
	fallbackPath string
	bindings     []Binding[T]
}

// TableOption configures a Table.
type TableOption[T any] func(*Table[T])

// WithFallback sets the path searched when nothing matches exactly.
func WithFallback[T any](path string) TableOption[T] {
	return func(t *Table[T]) {
		t.fallbackPath = path
	}
}

// WithNotFound sets the placeholder content returned for NotFound matches.
func WithNotFound[T any](content T) TableOption[T] {
	return func(t *Table[T]) {
		t.notFound = content
	}
}

// NewTable copies the bindings into a new Table.
// Duplicate paths are allowed; the first one in declaration order wins.
func NewTable[T any](bindings []Binding[T], opts ...TableOption[T]) *Table[T] {
	t := &Table[T]{
		bindings:     append([]Binding[T](nil), bindings...),
		fallbackPath: DefaultFallbackPath,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Match selects content for a pathname: first exact binding, then the
// fallback binding, then the not-found placeholder.
func (t *Table[T]) Match(pathname string) Match[T] {
	return t.match(Location{Path: pathname})
}

// Resolve matches a navigation target on its pathname only.
func (t *Table[T]) Resolve(target string) Match[T] {
	return t.match(ParseLocation(target))
}

// Paths returns the declared paths in declaration order.
func (t *Table[T]) Paths() []string {
	paths := make([]string, len(t.bindings))
	for i, b := range t.bindings {
		paths[i] = b.Path
	}
	return paths
}

// Len returns the number of bindings.
func (t *Table[T]) Len() int {
	return len(t.bindings)
}

func (t *Table[T]) match(loc Location) Match[T] {
	if b, ok := t.find(loc.Path); ok {
		return Match[T]{Content: b.Content, Location: loc, Path: b.Path, Kind: Exact}
	}
	if b, ok := t.find(t.fallbackPath); ok {
		return Match[T]{Content: b.Content, Location: loc, Path: b.Path, Kind: Fallback}
	}
	return Match[T]{Content: t.notFound, Location: loc, Kind: NotFound}
}

func (t *Table[T]) find(path string) (Binding[T], bool) {
	for _, b := range t.bindings {
		if b.Path == path {
			return b, true
		}
	}
	return Binding[T]{}, false
}
