package streaming

// LoadState is where a chunk key is in its load sequence.
type LoadState int

const (
	Idle LoadState = iota
	Queued
	Fetching
	Retrying
	FallbackGenerating
	Materializing
	Live
	Evicting
)

var loadStateNames = [...]string{
	Idle:               "idle",
	Queued:             "queued",
	Fetching:           "fetching",
	Retrying:           "retrying",
	FallbackGenerating: "fallback",
	Materializing:      "materializing",
	Live:               "live",
	Evicting:           "evicting",
}

func (s LoadState) String() string {
	if s < 0 || int(s) >= len(loadStateNames) {
		return "unknown"
	}
	return loadStateNames[s]
}

// Stats summarises a controller for logging.
type Stats struct {
	Live          int
	InFlight      int
	PendingTimers int

	RemoteLoads   int
	LocalLoads    int
	Failures      int
	Evictions     int
	Cancellations int
}
