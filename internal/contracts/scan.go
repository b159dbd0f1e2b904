package contracts

import "time"

// WorkItemKind selects which provider operation a work item needs.
type WorkItemKind string

const (
	WorkPriceSeries  WorkItemKind = "price_series"
	WorkFundamentals WorkItemKind = "fundamentals"
)

// WorkItem is one unit of fetch work. Immutable; created once per scan
// from the universe list.
type WorkItem struct {
	Symbol   string       `json:"symbol"`
	Kind     WorkItemKind `json:"kind"`
	Priority int          `json:"priority"`
}

// Key returns the cache/checkpoint key for the item.
func (w WorkItem) Key() string {
	return w.Symbol + ":" + string(w.Kind)
}

// FetchStatus classifies the terminal result of fetching one work item.
type FetchStatus string

const (
	FetchOK             FetchStatus = "ok"
	FetchRateLimited    FetchStatus = "rate_limited"
	FetchNotFound       FetchStatus = "not_found"
	FetchTransientError FetchStatus = "transient_error"
	FetchPermanentError FetchStatus = "permanent_error"
)

// Terminal reports whether the status can never improve with a retry.
func (s FetchStatus) Terminal() bool {
	return s == FetchNotFound || s == FetchPermanentError
}

// Retryable reports whether another attempt may change the result.
// Pure function: retry policy is decided here, not inside I/O code.
func (s FetchStatus) Retryable() bool {
	return s == FetchRateLimited || s == FetchTransientError
}

// Outcome is the recorded result of fetching one work item. Only the
// final outcome per item is persisted to the checkpoint.
type Outcome struct {
	Symbol   string        `json:"symbol"`
	Kind     WorkItemKind  `json:"kind"`
	Status   FetchStatus   `json:"status"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed"`
	Error    string        `json:"error,omitempty"`
	FromCache bool         `json:"from_cache,omitempty"`
}

// OK reports whether the item fetched successfully.
func (o Outcome) OK() bool {
	return o.Status == FetchOK
}

// ScanSummary aggregates terminal outcomes by kind for the final report.
type ScanSummary struct {
	ScanID    string    `json:"scan_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Total      int `json:"total"`
	OK         int `json:"ok"`
	FromCache  int `json:"from_cache"`
	RateLimited int `json:"rate_limited"`
	NotFound   int `json:"not_found"`
	Transient  int `json:"transient"`
	Permanent  int `json:"permanent"`

	// Symbols that need a follow-up pass (rate_limited / transient).
	Retryable []string `json:"retryable,omitempty"`
}

// Add folds one terminal outcome into the summary.
func (s *ScanSummary) Add(o Outcome) {
	s.Total++
	switch o.Status {
	case FetchOK:
		s.OK++
		if o.FromCache {
			s.FromCache++
		}
	case FetchRateLimited:
		s.RateLimited++
		s.Retryable = append(s.Retryable, o.Symbol)
	case FetchTransientError:
		s.Transient++
		s.Retryable = append(s.Retryable, o.Symbol)
	case FetchNotFound:
		s.NotFound++
	case FetchPermanentError:
		s.Permanent++
	}
}

// LimiterConfig holds the hysteresis controller constants. The upstream
// limit is undocumented and time-varying, so these are tuning knobs, not
// a model of the real capacity.
type LimiterConfig struct {
	BaseDelay        time.Duration `json:"base_delay" yaml:"base_delay"`
	Step             time.Duration `json:"step" yaml:"step"`
	Ceiling          time.Duration `json:"ceiling" yaml:"ceiling"`
	ErrorThreshold   int           `json:"error_threshold" yaml:"error_threshold"`
	Cooldown         time.Duration `json:"cooldown" yaml:"cooldown"`
	SuccessThreshold int           `json:"success_threshold" yaml:"success_threshold"`
	DecayStep        time.Duration `json:"decay_step" yaml:"decay_step"`
}

// DefaultLimiterConfig returns the default controller constants.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		BaseDelay:        500 * time.Millisecond,
		Step:             500 * time.Millisecond,
		Ceiling:          5 * time.Second,
		ErrorThreshold:   3,
		Cooldown:         30 * time.Second,
		SuccessThreshold: 10,
		DecayStep:        250 * time.Millisecond,
	}
}

// ScanPreset maps a named throughput profile to pipeline parameters.
type ScanPreset struct {
	Name      string        `json:"name"`
	Workers   int           `json:"workers"`
	BaseDelay time.Duration `json:"base_delay"`
}

// Presets matching the original scanner's CLI modes.
var (
	PresetConservative = ScanPreset{Name: "conservative", Workers: 2, BaseDelay: 1 * time.Second}
	PresetDefault      = ScanPreset{Name: "default", Workers: 3, BaseDelay: 500 * time.Millisecond}
	PresetAggressive   = ScanPreset{Name: "aggressive", Workers: 5, BaseDelay: 300 * time.Millisecond}
)

// PresetByName resolves a preset name; ok is false for unknown names.
func PresetByName(name string) (ScanPreset, bool) {
	switch name {
	case "conservative":
		return PresetConservative, true
	case "default", "":
		return PresetDefault, true
	case "aggressive":
		return PresetAggressive, true
	default:
		return ScanPreset{}, false
	}
}
