package hub

// SignalKind selects the outbound event a relayed handshake payload is
// tagged with. WebRTC needs exactly two exchanges per peer pair: the
// initiating offer and the reply.
type SignalKind int

const (
	SignalOffer  SignalKind = iota // sending-signal -> receiving-signal
	SignalAnswer                   // returning-signal -> receiving-returned-signal
)

func (k SignalKind) outboundEvent() string {
	if k == SignalAnswer {
		return EvReceivingReturned
	}
	return EvReceivingSignal
}

// Relay forwards WebRTC handshake payloads between two identified peers.
// Stateless per exchange: it never interprets the signal, only routes it by
// target identity. Delivery is at-most-once; an offline receiver silently
// drops the signal, mirroring call races where the peer just disconnected.
type Relay struct {
	reg *Registry
}

func NewRelay(reg *Registry) *Relay {
	return &Relay{reg: reg}
}

// Relay looks up the receiver's live connections and forwards
// {senderId, signal} to all of them. No retries, no sender notification on
// a missing receiver; renegotiation is WebRTC's problem, not the hub's.
func (r *Relay) Relay(kind SignalKind, senderID, receiverID string, signal map[string]any) int {
	conns := r.reg.ConnectionsFor(receiverID)
	if len(conns) == 0 {
		return 0
	}
	frame := BuildFrame(kind.outboundEvent(), map[string]any{
		"senderId": senderID,
		"signal":   signal,
	})
	n := 0
	for _, c := range conns {
		if c.Enqueue(frame) {
			n++
		}
	}
	return n
}
