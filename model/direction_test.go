package model

import "testing"

func TestTurn(t *testing.T) {
	tests := []struct {
		from Direction
		turn Turn
		want Direction
	}{
		{Up, TurnRight, Right},
		{Right, TurnRight, Down},
		{Down, TurnRight, Left},
		{Left, TurnRight, Up},
		{Up, TurnLeft, Left},
		{Left, TurnLeft, Down},
		{Up, TurnReverse, Down},
		{Right, TurnReverse, Left},
	}
	for _, tc := range tests {
		if got := tc.from.Turn(tc.turn); got != tc.want {
			t.Errorf("%s.Turn(%s) = %s, want %s", tc.from, tc.turn, got, tc.want)
		}
	}
}

func TestTurnInverses(t *testing.T) {
	for _, d := range Directions {
		if got := d.Turn(TurnLeft).Turn(TurnRight); got != d {
			t.Errorf("left then right from %s = %s", d, got)
		}
		if got := d.Turn(TurnReverse).Turn(TurnReverse); got != d {
			t.Errorf("reverse twice from %s = %s", d, got)
		}
		r := d
		for range 4 {
			r = r.Turn(TurnRight)
		}
		if r != d {
			t.Errorf("four right turns from %s = %s", d, r)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "right", "down", "left"} {
		if _, ok := ParseDirection(s); !ok {
			t.Errorf("ParseDirection(%q) failed", s)
		}
	}
	for _, s := range []string{"", "Up", "north", "up-left"} {
		if _, ok := ParseDirection(s); ok {
			t.Errorf("ParseDirection(%q) should fail", s)
		}
	}
	if _, ok := ParseTurn("around"); ok {
		t.Error("ParseTurn(around) should fail")
	}
}

func TestMoveDelta(t *testing.T) {
	tests := []struct {
		d      Direction
		dx, dy int
	}{
		{Up, 0, -1},
		{Right, 1, 0},
		{Down, 0, 1},
		{Left, -1, 0},
	}
	for _, tc := range tests {
		dx, dy := tc.d.Delta()
		if dx != tc.dx || dy != tc.dy {
			t.Errorf("%s.Delta() = (%d,%d), want (%d,%d)", tc.d, dx, dy, tc.dx, tc.dy)
		}
	}
}

func TestCompassOffsets(t *testing.T) {
	seen := make(map[Point]bool)
	for _, c := range CompassPoints {
		dx, dy := c.Offset()
		if dx == 0 && dy == 0 {
			t.Errorf("%s has no offset", c)
		}
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
			t.Errorf("%s offset (%d,%d) is not a unit step", c, dx, dy)
		}
		seen[Point{dx, dy}] = true
		if got, ok := ParseCompass(string(c)); !ok || got != c {
			t.Errorf("ParseCompass(%q) = %q, %v", c, got, ok)
		}
	}
	if len(seen) != 8 {
		t.Errorf("compass points cover %d distinct offsets, want 8", len(seen))
	}
	if dx, dy := SouthWest.Offset(); dx != -1 || dy != 1 {
		t.Errorf("down-left offset = (%d,%d), want (-1,1)", dx, dy)
	}
}
