package domain

// Status is the terminal outcome of a single reachability probe.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusTimeout Status = "timeout"
	StatusSkipped Status = "skipped"
)

// NoTarget is reported as the target of skipped probes.
const NoTarget = "N/A"

// PingResult is the ephemeral outcome of probing one service.
// It is never persisted.
type PingResult struct {
	Name   string `json:"name" yaml:"name"`
	Target string `json:"target" yaml:"target"`
	Status Status `json:"status" yaml:"status"`

	// LatencyMs is set only when Status is online.
	LatencyMs *int64 `json:"latency" yaml:"latency"`

	// Error carries the dial error for offline probes. Diagnostic only.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Online reports whether the probe reached the upstream.
func (r PingResult) Online() bool {
	return r.Status == StatusOnline
}
