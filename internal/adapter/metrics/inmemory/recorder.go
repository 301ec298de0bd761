package inmemory

import "sync"

type Snapshot struct {
	Ticks          uint64            `json:"ticks"`
	EventsEmitted  uint64            `json:"events_emitted"`
	BuildsTotal    uint64            `json:"builds_total"`
	BuildsAccepted uint64            `json:"builds_accepted"`
	BuildsRejected uint64            `json:"builds_rejected"`
	ByRefusal      map[string]uint64 `json:"by_refusal"`
	Failures       uint64            `json:"failures"`
}

// Recorder is the in-process KPI counter behind /ops/kpi.
type Recorder struct {
	mu        sync.Mutex
	ticks     uint64
	events    uint64
	accepted  uint64
	rejected  uint64
	byRefusal map[string]uint64
	failures  uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byRefusal: map[string]uint64{},
	}
}

func (r *Recorder) RecordTick(emittedEvents int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
	if emittedEvents > 0 {
		r.events += uint64(emittedEvents)
	}
}

func (r *Recorder) RecordBuildSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted++
}

func (r *Recorder) RecordBuildRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
	r.byRefusal[reason]++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		Ticks:          r.ticks,
		EventsEmitted:  r.events,
		BuildsTotal:    r.accepted + r.rejected,
		BuildsAccepted: r.accepted,
		BuildsRejected: r.rejected,
		ByRefusal:      make(map[string]uint64, len(r.byRefusal)),
		Failures:       r.failures,
	}
	for k, v := range r.byRefusal {
		out.ByRefusal[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
