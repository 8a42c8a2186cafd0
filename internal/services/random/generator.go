// Package random draws the variates the simulation engine consumes.
//
// A Generator is not safe for concurrent use; every trajectory owns one.
package random

import (
	"math"
	"math/rand/v2"
)

// Generator produces uniform, normal and Student-t variates from an
// injectable uniform source.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded from ambient entropy.
func New() *Generator {
	return NewWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeeded returns a deterministic generator. Distinct streams under one
// seed yield independent sequences.
func NewSeeded(seed, stream uint64) *Generator {
	return NewWithSource(rand.NewPCG(seed, stream))
}

// NewWithSource wraps an arbitrary uniform source.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// Uniform returns a draw in [0,1).
func (g *Generator) Uniform() float64 {
	return g.rng.Float64()
}

// Normal returns a Box-Muller draw with the given mean and standard deviation.
func (g *Generator) Normal(mean, stdDev float64) float64 {
	u1 := g.rng.Float64()
	for u1 == 0 {
		u1 = g.rng.Float64()
	}
	u2 := g.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stdDev*z
}

// StandardNormal is Normal(0, 1).
func (g *Generator) StandardNormal() float64 {
	return g.Normal(0, 1)
}

// StudentT returns a draw with df degrees of freedom built from df+1 normal
// draws. Smaller df gives heavier tails; df below 1 is treated as 1.
func (g *Generator) StudentT(df int) float64 {
	if df < 1 {
		df = 1
	}
	z := g.StandardNormal()
	var chi2 float64
	for i := 0; i < df; i++ {
		x := g.StandardNormal()
		chi2 += x * x
	}
	if chi2 == 0 {
		return z
	}
	return z / math.Sqrt(chi2/float64(df))
}
