package infinite

import "time"

// DefaultInterval is the default dedup, focus throttle and refresh interval.
const DefaultInterval = time.Minute

const defaultRevalidateConcurrency = 4

// Options configures one collection. The first subscriber of a key decides
// the options; later subscribers share the live collection as is.
type Options struct {
	// DedupingInterval is how long a resolved page is served without
	// re-requesting it. Zero means DefaultInterval.
	DedupingInterval time.Duration
	// FocusThrottleInterval is the minimum gap between focus revalidations.
	// Zero means DefaultInterval.
	FocusThrottleInterval time.Duration
	// RefreshInterval is the passive revalidation period. Zero disables it.
	RefreshInterval time.Duration
	// InitialSize is the number of pages requested on first subscription.
	// Zero defers every fetch to SetSize/LoadMore.
	InitialSize int
	// RevalidateConcurrency bounds parallel page requests during revalidation.
	RevalidateConcurrency int
}

// DefaultOptions returns options with every interval at DefaultInterval and
// one initial page.
func DefaultOptions() Options {
	return IntervalOptions(DefaultInterval)
}

// IntervalOptions uses d for dedup, focus throttle and passive refresh.
func IntervalOptions(d time.Duration) Options {
	if d <= 0 {
		d = DefaultInterval
	}
	return Options{
		DedupingInterval:      d,
		FocusThrottleInterval: d,
		RefreshInterval:       d,
		InitialSize:           1,
		RevalidateConcurrency: defaultRevalidateConcurrency,
	}
}

func (o Options) withDefaults() Options {
	if o.DedupingInterval <= 0 {
		o.DedupingInterval = DefaultInterval
	}
	if o.FocusThrottleInterval <= 0 {
		o.FocusThrottleInterval = DefaultInterval
	}
	if o.RefreshInterval < 0 {
		o.RefreshInterval = 0
	}
	if o.InitialSize < 0 {
		o.InitialSize = 0
	}
	if o.RevalidateConcurrency <= 0 {
		o.RevalidateConcurrency = defaultRevalidateConcurrency
	}
	return o
}
