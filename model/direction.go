package model

// Direction is the heading of an agent.
type Direction string

const (
	Up    Direction = "up"
	Right Direction = "right"
	Down  Direction = "down"
	Left  Direction = "left"
)

// Directions is the rotation order: turning right walks forward through it.
var Directions = [4]Direction{Up, Right, Down, Left}

// ParseDirection accepts exactly the four heading names.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(s); d {
	case Up, Right, Down, Left:
		return d, true
	}
	return "", false
}

func (d Direction) index() int {
	for i, v := range Directions {
		if v == d {
			return i
		}
	}
	return 0
}

// Turn is a relative rotation.
type Turn string

const (
	TurnLeft    Turn = "left"
	TurnRight   Turn = "right"
	TurnReverse Turn = "reverse"
)

// ParseTurn accepts left, right and reverse.
func ParseTurn(s string) (Turn, bool) {
	switch t := Turn(s); t {
	case TurnLeft, TurnRight, TurnReverse:
		return t, true
	}
	return "", false
}

// Turn rotates d. Left is +3 (same as -1 with wrap), reverse is +2.
func (d Direction) Turn(t Turn) Direction {
	step := 0
	switch t {
	case TurnRight:
		step = 1
	case TurnLeft:
		step = 3
	case TurnReverse:
		step = 2
	}
	return Directions[(d.index()+step)%4]
}

// Delta is the one-cell displacement for a move along d. Y grows downward.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Compass names one of the 8 cells around a position.
type Compass string

const (
	North     Compass = "up"
	NorthEast Compass = "up-right"
	East      Compass = "right"
	SouthEast Compass = "down-right"
	South     Compass = "down"
	SouthWest Compass = "down-left"
	West      Compass = "left"
	NorthWest Compass = "up-left"
)

// CompassPoints lists the neighbors clockwise from up.
var CompassPoints = [8]Compass{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// ParseCompass accepts the 8 neighbor names.
func ParseCompass(s string) (Compass, bool) {
	c := Compass(s)
	for _, v := range CompassPoints {
		if v == c {
			return c, true
		}
	}
	return "", false
}

// Offset returns the unit displacement towards c. Diagonals combine both axes.
func (c Compass) Offset() (dx, dy int) {
	switch c {
	case North:
		return 0, -1
	case NorthEast:
		return 1, -1
	case East:
		return 1, 0
	case SouthEast:
		return 1, 1
	case South:
		return 0, 1
	case SouthWest:
		return -1, 1
	case West:
		return -1, 0
	case NorthWest:
		return -1, -1
	}
	return 0, 0
}
