package wizard

// AttemptTicket identifies one in-flight draw. Its completion is ignored
// once the session it was issued for is reset or the draw is abandoned.
type AttemptTicket struct {
	Session string
	Serial  uint64
}

// attemptCounter tracks draws and the processing guard.
type attemptCounter struct {
	max      int
	count    int
	inflight uint64 // serial of the outstanding draw, 0 when idle
	serial   uint64
}

func newAttemptCounter(max int) attemptCounter {
	return attemptCounter{max: max}
}

func (a *attemptCounter) processing() bool {
	return a.inflight != 0
}

// begin marks a draw in flight and returns its serial.
func (a *attemptCounter) begin() (uint64, error) {
	if a.processing() {
		return 0, ErrAttemptInFlight
	}
	a.serial++
	a.inflight = a.serial
	return a.serial, nil
}

// complete finishes the draw with the given serial.
func (a *attemptCounter) complete(serial uint64) (AttemptOutcome, error) {
	if !a.processing() || serial != a.inflight {
		return OutcomeNone, ErrStaleCompletion
	}
	a.inflight = 0

	if a.count < a.max-1 {
		a.count++
		return OutcomeRetry, nil
	}
	return OutcomeGateRequired, nil
}

// abandon drops the outstanding draw so its completion becomes stale.
func (a *attemptCounter) abandon() {
	a.inflight = 0
}
