package explore

import "runtime"

// ScheduleExplorer is the default Explorer: it runs the supplied body some
// fixed number of trials, yielding the scheduler between trials with
// runtime.Gosched so the Go runtime has room to interleave the spawned
// workers differently each time. It is a statistical stand-in for a genuine
// deterministic interleaving search; it does not attempt to detect when it
// has covered the full interleaving space, and it never itself diagnoses
// deadlocks or data races (those would come from a dedicated model-checking
// runtime).
type ScheduleExplorer struct {
	// Trials is the number of times the parallel phase is re-run per
	// scenario check. Defaults to 20 when <= 0.
	Trials int
}

func (e ScheduleExplorer) Explore(run func() error) error {
	trials := e.Trials
	if trials <= 0 {
		trials = 20
	}
	for i := 0; i < trials; i++ {
		runtime.Gosched()
		if err := run(); err != nil {
			return err
		}
	}
	return nil
}
