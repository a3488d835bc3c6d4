package analysis

// Window describes how much an attribute's position in an item's list is
// worth. Attributes inside the window (position < Width) score a bonus,
// either decaying with position (Linear) or flat. Attributes past the end of
// the window get a small flat credit.
type Window struct {
	Width      int
	Linear     bool
	Multiplier float64
	Base       float64
	OutOfRange float64
}

// RankDecay returns the score for the attribute at position in an ordered
// attribute list.
func RankDecay(position int, w Window) float64 {
	if w.Width <= 0 {
		return w.Base
	}
	if position >= w.Width {
		return w.Base + w.OutOfRange
	}
	if w.Linear {
		return w.Base + float64(w.Width-position)*w.Multiplier
	}
	return w.Base + float64(w.Width)
}

// dimension ties a window to the share of the item multiplier it receives.
type dimension struct {
	window Window
	factor float64
}

type dimensions struct {
	cast, writer, director, country, role, genre, studio dimension
}

func (o Options) dimensions() dimensions {
	return dimensions{
		cast:     dimension{Window{Width: o.CastWidth, Linear: true, Multiplier: 1, Base: 0.1, OutOfRange: 0.1}, 1},
		writer:   dimension{Window{Width: o.CastWidth, Linear: true, Multiplier: 1, Base: 0.1, OutOfRange: 0.1}, 1.0 / 3},
		director: dimension{Window{Width: 3, Linear: false, Multiplier: 1, Base: 15, OutOfRange: 3}, 1.0 / 2},
		country:  dimension{Window{Width: 3, Linear: true, Multiplier: 1, Base: 5, OutOfRange: 1}, 1.0 / 2},
		role:     dimension{Window{Width: o.CastWidth, Linear: true, Multiplier: 1, Base: 10, OutOfRange: 1}, 1},
		genre:    dimension{Window{Width: o.GenreWidth, Linear: false, Multiplier: 1, Base: 20, OutOfRange: 1}, 1},
		studio:   dimension{Window{Width: 2, Linear: true, Multiplier: 1, Base: 5, OutOfRange: 1}, 1.0 / 3},
	}
}
