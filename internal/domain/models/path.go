package models

// Regime is the market state governing a simulated day.
type Regime string

const (
	RegimeBull Regime = "bull"
	RegimeBear Regime = "bear"
)

// PathPoint is one day of a trajectory. Immutable once appended.
type PathPoint struct {
	Day      int     `json:"day"`
	Value    float64 `json:"value"`
	Regime   Regime  `json:"regime"`
	Drawdown float64 `json:"drawdown"`
}

// Path is one simulated trajectory: Points[0] is day 0 and there are no gaps.
// MaxDrawdown is an annotation over Points, not a point itself.
type Path struct {
	Points      []PathPoint `json:"points"`
	MaxDrawdown float64     `json:"maxDrawdown"`
}

// FinalValue returns the portfolio value on the last simulated day.
func (p Path) FinalValue() float64 {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[len(p.Points)-1].Value
}

// Stats summarise the shape of an ensemble.
type Stats struct {
	Simulations int `json:"simulations"`
	Days        int `json:"days"`
}

// Result is the complete ensemble of one run, handed to the caller once.
type Result struct {
	RunID string `json:"runId"`
	Paths []Path `json:"results"`
	Stats Stats  `json:"stats"`
}
