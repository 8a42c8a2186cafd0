package stochastic

import "PortfolioSim/internal/domain/models"

// JumpDiffusion adds rare discrete shocks to a daily return.
type JumpDiffusion struct {
	Intensity float64
	Mean      float64
	Vol       float64
}

func NewJumpDiffusion(p models.JumpParams) JumpDiffusion {
	return JumpDiffusion{Intensity: p.Intensity, Mean: p.Mean, Vol: p.Vol}
}

// Draw returns a jump size with probability Intensity and 0 otherwise. The
// normal draw is only consumed when a jump occurs.
func (j JumpDiffusion) Draw(src Source) float64 {
	if src.Uniform() >= j.Intensity {
		return 0
	}
	return src.Normal(j.Mean, j.Vol)
}
