package weather

// Favorites is an insertion-ordered list of locations with set-like membership by coordinate.
type Favorites []Location

// Index returns the position of the first entry equal to loc, or -1.
func (f Favorites) Index(loc Location) int {
	for i, fav := range f {
		if fav.Equal(loc) {
			return i
		}
	}
	return -1
}

func (f Favorites) Contains(loc Location) bool {
	return f.Index(loc) >= 0
}

// Toggle removes the first entry equal to loc, or appends loc when none exists.
// The receiver is left untouched.
func (f Favorites) Toggle(loc Location) Favorites {
	out := make(Favorites, 0, len(f)+1)
	if i := f.Index(loc); i >= 0 {
		out = append(out, f[:i]...)
		return append(out, f[i+1:]...)
	}
	out = append(out, f...)
	return append(out, loc)
}
