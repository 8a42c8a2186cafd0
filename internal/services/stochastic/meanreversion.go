package stochastic

// MeanReversion is an Ornstein-Uhlenbeck style drift pulled toward a
// long-term mean. The state starts at the long-term mean.
type MeanReversion struct {
	longTermMean float64
	speed        float64
	current      float64
}

// NewMeanReversion returns a process at longTermMean reverting at speed.
func NewMeanReversion(longTermMean, speed float64) *MeanReversion {
	return &MeanReversion{longTermMean: longTermMean, speed: speed, current: longTermMean}
}

// Step advances the state by one day with diffusion scale vol and returns the
// new drift.
func (m *MeanReversion) Step(vol float64, src Source) float64 {
	m.current += m.speed*(m.longTermMean-m.current) + vol*src.Normal(0, 1)
	return m.current
}

// Current returns the drift after the last Step.
func (m *MeanReversion) Current() float64 { return m.current }
