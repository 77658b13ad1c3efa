package wizard

// RevealTicket authorizes exactly one reveal. It is issued by a confirmed
// gate and invalidated by its first consumption.
type RevealTicket struct {
	Session string
	Serial  uint64
}

// gate is the one-shot confirmation in front of the reveal.
type gate struct {
	state  GateState
	serial uint64
}

func (g *gate) open() {
	g.state = GatePending
}

func (g *gate) cancel() error {
	if g.state != GatePending {
		return ErrGateNotPending
	}
	g.state = GateClosed
	return nil
}

func (g *gate) confirm(session string) (RevealTicket, error) {
	if g.state != GatePending {
		return RevealTicket{}, ErrGateNotPending
	}
	g.state = GateSatisfied
	g.serial++
	return RevealTicket{Session: session, Serial: g.serial}, nil
}
