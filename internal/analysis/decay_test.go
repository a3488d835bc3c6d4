package analysis

import (
	"testing"
)

func TestRankDecay(t *testing.T) {
	cases := []struct {
		name     string
		position int
		window   Window
		want     float64
	}{
		{"disabled", 0, Window{Width: 0, Base: 3, OutOfRange: 7}, 3},
		{"disabled negative width", 4, Window{Width: -1, Base: 3, OutOfRange: 7}, 3},
		{"linear first", 0, Window{Width: 5, Linear: true, Multiplier: 1, Base: 0.1, OutOfRange: 0.1}, 5.1},
		{"linear last in window", 4, Window{Width: 5, Linear: true, Multiplier: 1, Base: 0.1, OutOfRange: 0.1}, 1.1},
		{"linear multiplier", 1, Window{Width: 3, Linear: true, Multiplier: 2, Base: 5, OutOfRange: 1}, 9},
		{"flat in window", 2, Window{Width: 3, Base: 20, OutOfRange: 1}, 23},
		{"out of range", 3, Window{Width: 3, Base: 20, OutOfRange: 1}, 21},
		{"far out of range", 40, Window{Width: 3, Base: 15, OutOfRange: 3}, 18},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := RankDecay(c.position, c.window)
			if !almostEqual(got, c.want) {
				t.Errorf("RankDecay(%d, %+v) = %v, want %v", c.position, c.window, got, c.want)
			}
		})
	}
}

func TestRankDecayMonotonic(t *testing.T) {
	w := Window{Width: 10, Linear: true, Multiplier: 1.5, Base: 0.1, OutOfRange: 0.1}
	prev := RankDecay(0, w)
	for pos := 1; pos < w.Width; pos++ {
		got := RankDecay(pos, w)
		if got > prev {
			t.Errorf("RankDecay(%d) = %v, greater than RankDecay(%d) = %v", pos, got, pos-1, prev)
		}
		prev = got
	}

	outside := RankDecay(w.Width, w)
	for pos := w.Width; pos < w.Width+20; pos++ {
		if got := RankDecay(pos, w); got != outside {
			t.Errorf("RankDecay(%d) = %v, want constant %v outside the window", pos, got, outside)
		}
	}
}

func TestRankDecayDisabledIgnoresPosition(t *testing.T) {
	w := Window{Width: 0, Linear: true, Multiplier: 1, Base: 4.2, OutOfRange: 9}
	for pos := 0; pos < 20; pos++ {
		if got := RankDecay(pos, w); got != w.Base {
			t.Errorf("RankDecay(%d) = %v, want base %v", pos, got, w.Base)
		}
	}
}

func almostEqual(a, b float64) bool {
	const epsilon = 1e-9
	d := a - b
	return d < epsilon && d > -epsilon
}
