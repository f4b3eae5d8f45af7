package model

// Cell is one stored grid cell.
type Cell struct {
	Point
	Color Color `json:"color"`
}

// WorldState is a point-in-time copy of the simulation, used for the
// observer feed and traces.
type WorldState struct {
	Tick   int     `json:"tick"`
	Agents []Agent `json:"agents"`
	Cells  []Cell  `json:"cells"`
}

// Agent looks up an agent by ID.
func (w WorldState) Agent(id string) (Agent, bool) {
	for _, a := range w.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}
