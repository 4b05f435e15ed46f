package booking

// Bound is an upper limit on a requested quantity: either a known
// non-negative integer or unknown. An unknown bound imposes no local
// restriction; final enforcement is always remote.
type Bound struct {
	known bool
	limit int
}

// KnownBound returns a bound with the given limit, floored at zero.
func KnownBound(limit int) Bound {
	if limit < 0 {
		limit = 0
	}
	return Bound{known: true, limit: limit}
}

// UnknownBound returns a bound that imposes no restriction.
func UnknownBound() Bound {
	return Bound{}
}

// Known reports whether the bound carries an integer limit.
func (b Bound) Known() bool { return b.known }

// Limit returns the integer limit and whether it is known.
func (b Bound) Limit() (int, bool) { return b.limit, b.known }

// Clamp fits a requested quantity within a bound. It never raises a
// quantity, only lowers it, and never returns a negative value.
func Clamp(requested int, b Bound) int {
	if requested < 0 {
		return 0
	}
	if b.known && requested > b.limit {
		return b.limit
	}
	return requested
}

// Bounds maps each resource kind to its currently trusted bound.
type Bounds map[Kind]Bound

// AllUnknown returns bounds with no known limit for any kind.
func AllUnknown() Bounds {
	bounds := make(Bounds, len(Kinds))
	for _, kind := range Kinds {
		bounds[kind] = UnknownBound()
	}
	return bounds
}

// For returns the bound for kind, treating missing entries as unknown.
func (b Bounds) For(kind Kind) Bound {
	if b == nil {
		return UnknownBound()
	}
	bound, ok := b[kind]
	if !ok {
		return UnknownBound()
	}
	return bound
}
