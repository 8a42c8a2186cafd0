package models

// Scenarios are stress multipliers applied to every per-asset daily return.
// They are independent and compose multiplicatively when more than one is set.
type Scenarios struct {
	Recession       bool `json:"recession"`
	VolatilitySpike bool `json:"volatilitySpike"`
	BullMarket      bool `json:"bullMarket"`
}

// Options is the caller-facing run configuration. Nil toggles take their
// default value; see Resolve.
type Options struct {
	UseCorrelation     *bool                  `json:"useCorrelation,omitempty"`
	UseFatTails        *bool                  `json:"useFatTails,omitempty"`
	UseGARCH           *bool                  `json:"useGARCH,omitempty"`
	UseRegimeSwitching *bool                  `json:"useRegimeSwitching,omitempty"`
	UseJumpDiffusion   *bool                  `json:"useJumpDiffusion,omitempty"`
	UseMeanReversion   *bool                  `json:"useMeanReversion,omitempty"`
	Scenarios          Scenarios              `json:"scenarios"`
	AssetParams        map[string]AssetParams `json:"assetParams,omitempty"`

	// Seed makes the run deterministic. Absent means ambient entropy.
	Seed *uint64 `json:"seed,omitempty"`
}

// Settings are Options with every toggle resolved. Immutable for one run.
type Settings struct {
	UseCorrelation     bool      `json:"useCorrelation"`
	UseFatTails        bool      `json:"useFatTails"`
	UseGARCH           bool      `json:"useGARCH"`
	UseRegimeSwitching bool      `json:"useRegimeSwitching"`
	UseJumpDiffusion   bool      `json:"useJumpDiffusion"`
	UseMeanReversion   bool      `json:"useMeanReversion"`
	Scenarios          Scenarios `json:"scenarios"`
}

// Resolve applies the defaults: every model on except mean reversion.
func (o Options) Resolve() Settings {
	return Settings{
		UseCorrelation:     boolOr(o.UseCorrelation, true),
		UseFatTails:        boolOr(o.UseFatTails, true),
		UseGARCH:           boolOr(o.UseGARCH, true),
		UseRegimeSwitching: boolOr(o.UseRegimeSwitching, true),
		UseJumpDiffusion:   boolOr(o.UseJumpDiffusion, true),
		UseMeanReversion:   boolOr(o.UseMeanReversion, false),
		Scenarios:          o.Scenarios,
	}
}

// Bool returns a pointer to v, for building Options literals.
func Bool(v bool) *bool { return &v }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
