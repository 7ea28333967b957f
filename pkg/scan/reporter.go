package scan

import "time"

// Summary is what a completed scan reports.
type Summary struct {
	Root     string        `json:"root"`
	Files    int           `json:"files"`
	Flagged  uint64        `json:"flagged"`
	Duration time.Duration `json:"duration"`
}

// Reporter receives one status record per Clean or Flagged file and a summary once the scan is
// complete. Status is called from many workers at once and must be safe for concurrent use.
type Reporter interface {
	Status(v Verdict)
	Summary(s Summary)
}

// Reporters fans records out to every contained [Reporter] in order.
type Reporters []Reporter

// Status implements [Reporter].
func (rs Reporters) Status(v Verdict) {
	for _, r := range rs {
		r.Status(v)
	}
}

// Summary implements [Reporter].
func (rs Reporters) Summary(s Summary) {
	for _, r := range rs {
		r.Summary(s)
	}
}

type discard struct{}

func (discard) Status(Verdict)  {}
func (discard) Summary(Summary) {}

// Discard is a [Reporter] that drops everything.
var Discard Reporter = discard{}
