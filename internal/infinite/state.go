package infinite

// Phase is the pagination state of a collection.
type Phase int

const (
	// PhaseIdle: no pages resolved and nothing in flight.
	PhaseIdle Phase = iota
	// PhaseFetching: a page request is in flight.
	PhaseFetching
	// PhaseLoaded: one or more pages resolved, more may follow.
	PhaseLoaded
	// PhaseExhausted: the last resolved page was empty; no further pages are requested.
	PhaseExhausted
	// PhaseErrored: the last request failed; growth stops until the next SetSize.
	PhaseErrored
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseLoaded:
		return "loaded"
	case PhaseExhausted:
		return "exhausted"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// State is a point-in-time view of a collection.
type State[T any] struct {
	Key   string
	Phase Phase
	// Pages holds at most Size resolved pages, in page order.
	Pages []Page[T]
	// Size is the requested number of pages.
	Size int
	// FetchingPage is the page being appended, or -1.
	FetchingPage int
	// Err is the last transport error; resolved pages are kept.
	Err error
	// ErrPage is the page index that failed, or -1.
	ErrPage int
	// IsValidating is true while any request for the key is in flight.
	IsValidating bool
	// IsLoading is true while validating with no resolved page.
	IsLoading bool
}

// Items concatenates the items of all pages in page order.
// Duplicates across pages are kept.
func (s State[T]) Items() []T {
	n := 0
	for _, p := range s.Pages {
		n += len(p.Items)
	}
	out := make([]T, 0, n)
	for _, p := range s.Pages {
		out = append(out, p.Items...)
	}
	return out
}

func idleState[T any](key string) State[T] {
	return State[T]{Key: key, Phase: PhaseIdle, FetchingPage: -1, ErrPage: -1}
}

func derivePhase[T any](s State[T]) Phase {
	switch {
	case s.FetchingPage >= 0:
		return PhaseFetching
	case s.Err != nil:
		return PhaseErrored
	case len(s.Pages) == 0:
		return PhaseIdle
	case len(s.Pages[len(s.Pages)-1].Items) == 0:
		return PhaseExhausted
	default:
		return PhaseLoaded
	}
}
