package main

import (
	"fmt"
	"io"
	"sort"

	"PortfolioSim/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// summary condenses an ensemble for terminal output.
type summary struct {
	Trajectories    int     `json:"trajectories"`
	Days            int     `json:"days"`
	Mean            float64 `json:"mean"`
	P5              float64 `json:"p5"`
	P50             float64 `json:"p50"`
	P95             float64 `json:"p95"`
	MeanMaxDrawdown float64 `json:"meanMaxDrawdown"`
}

func summarize(paths []models.Path, stats models.Stats) summary {
	s := summary{Trajectories: len(paths), Days: stats.Days}
	if len(paths) == 0 {
		return s
	}
	finals := make([]float64, len(paths))
	drawdowns := make([]float64, len(paths))
	for i, p := range paths {
		finals[i] = p.FinalValue()
		drawdowns[i] = p.MaxDrawdown
	}
	sort.Float64s(finals)
	s.Mean = stat.Mean(finals, nil)
	s.P5 = stat.Quantile(0.05, stat.Empirical, finals, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, finals, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, finals, nil)
	s.MeanMaxDrawdown = stat.Mean(drawdowns, nil)
	return s
}

func (s summary) print(w io.Writer, initial float64) {
	fmt.Fprintf(w, "trajectories      %d\n", s.Trajectories)
	fmt.Fprintf(w, "horizon (days)    %d\n", s.Days)
	if s.Trajectories == 0 {
		fmt.Fprintln(w, "no trajectories")
		return
	}
	fmt.Fprintf(w, "initial value     %.2f\n", initial)
	fmt.Fprintf(w, "final mean        %.2f\n", s.Mean)
	fmt.Fprintf(w, "final p5          %.2f\n", s.P5)
	fmt.Fprintf(w, "final p50         %.2f\n", s.P50)
	fmt.Fprintf(w, "final p95         %.2f\n", s.P95)
	fmt.Fprintf(w, "mean max drawdown %.2f%%\n", s.MeanMaxDrawdown*100)
}
