package replay

import "time"

/* History is one record of an operator-initiated re-send. Replays are
 * a debugging tool: they never touch the original delivery queue
 * entry and are never retried automatically. Each invocation produces
 * exactly one immutable history row.
 */
type History struct {
	ID             string
	EventID        string
	ReplayedBy     string
	TargetURL      string
	Payload        []byte
	ResponseStatus int
	ResponseBody   string
	ResponseTimeMS int64
	Success        bool
	ErrorMessage   string
	ReplayedAt     time.Time
}

// Result is what the invoking operator gets back
type Result struct {
	Success        bool
	ResponseStatus int
	ResponseBody   string
	ResponseTimeMS int64
	ErrorMessage   string
}
