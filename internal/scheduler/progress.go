package scheduler

import "time"

// Progress is a point-in-time view of where a run is. Repeat and Bunch are
// zero-based indexes of the repeat/bunch most recently started.
type Progress struct {
	RunID      string    `json:"run_id"`
	Repeat     int       `json:"repeat"`
	Repeats    int       `json:"repeats"`
	Bunch      int       `json:"bunch"`
	Bunches    int       `json:"bunches"`
	Dispatched int64     `json:"dispatched"`
	Settled    int64     `json:"settled"`
	Planned    int64     `json:"planned"`
	StartedAt  time.Time `json:"started_at"`
	Finished   bool      `json:"finished"`
}

func (r *Runner) Progress() Progress {
	p := Progress{
		RunID:      r.RunID,
		Repeat:     int(r.prog.repeat.Load()),
		Repeats:    int(r.prog.repeats.Load()),
		Bunch:      int(r.prog.bunch.Load()),
		Bunches:    int(r.prog.bunches.Load()),
		Dispatched: r.prog.dispatched.Load(),
		Settled:    r.prog.settled.Load(),
		Planned:    r.prog.planned.Load(),
		Finished:   r.prog.finished.Load(),
	}
	if ns := r.prog.started.Load(); ns != 0 {
		p.StartedAt = time.Unix(0, ns).UTC()
	}
	return p
}
