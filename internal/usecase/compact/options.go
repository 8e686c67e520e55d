package compact

// Defaults tuned for a Discord webhook "content" field.
const (
	DefaultMaxDisplay     = 25
	DefaultBudget         = 2000
	DefaultFloor          = 3
	DefaultDateLabel      = "締切: "
	DefaultOmittedSuffix  = "...他にも省略されています..."
	DefaultFallbackNotice = "(省略されています)"

	// capStep is how much the row cap shrinks per compaction round.
	capStep = 2
)

// Options controls how a date group is squeezed into one message.
type Options struct {
	// OmittedSuffix is the trailing line added whenever rows were merged or dropped.
	OmittedSuffix string

	// MaxDisplay is the initial cap on the number of rows.
	MaxDisplay int

	// Budget is the hard limit on the message length in characters (runes).
	Budget int

	// Floor is the row count below which rows are never dropped one by one.
	Floor int

	// DateLabel prefixes the YYYY-MM-DD date line. Empty means DefaultDateLabel.
	DateLabel string

	// FallbackNotice is the body of the last-resort message. Empty means DefaultFallbackNotice.
	FallbackNotice string
}

// DefaultOptions returns options with a 25 row cap, a 2000 character budget and a floor of 3.
func DefaultOptions() Options {
	return Options{
		OmittedSuffix:  DefaultOmittedSuffix,
		MaxDisplay:     DefaultMaxDisplay,
		Budget:         DefaultBudget,
		Floor:          DefaultFloor,
		DateLabel:      DefaultDateLabel,
		FallbackNotice: DefaultFallbackNotice,
	}
}

// normalized clamps invalid values instead of failing.
//   - MaxDisplay <= 0 becomes DefaultMaxDisplay
//   - Budget <= 0 becomes DefaultBudget
//   - Floor is kept within [0, MaxDisplay-1]
func (o Options) normalized() Options {
	if o.MaxDisplay <= 0 {
		o.MaxDisplay = DefaultMaxDisplay
	}
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.Floor < 0 {
		o.Floor = 0
	}
	if o.Floor >= o.MaxDisplay {
		o.Floor = o.MaxDisplay - 1
	}
	if o.DateLabel == "" {
		o.DateLabel = DefaultDateLabel
	}
	if o.FallbackNotice == "" {
		o.FallbackNotice = DefaultFallbackNotice
	}
	return o
}
