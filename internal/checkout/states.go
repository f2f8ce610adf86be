package checkout

// State is the saga state of one checkout attempt. There is no distributed
// transaction across the Cart Store, Order Service, and Payment Service; the
// workflow moves through these states and records how far it got.
type State string

const (
	// StateDrafting: the order draft is being built; nothing committed yet.
	StateDrafting State = "drafting"
	// StateOrderPending: the order exists on the Order Service.
	StateOrderPending State = "order_pending"
	// StatePaymentPending: online payment verification is in flight.
	StatePaymentPending State = "payment_pending"
	// StateCompleted: order created and, if online, payment verified.
	StateCompleted State = "completed"
	// StatePartiallyCompleted: the order exists but payment verification
	// failed. No compensating cancel is issued; the order awaits payment.
	StatePartiallyCompleted State = "partially_completed"
	// StateFailed: nothing was committed.
	StateFailed State = "failed"
)

var validTransitions = map[State][]State{
	StateDrafting:           {StateOrderPending, StateFailed},
	StateOrderPending:       {StatePaymentPending, StateCompleted},
	StatePaymentPending:     {StateCompleted, StatePartiallyCompleted},
	StateCompleted:          {},
	StatePartiallyCompleted: {StateCompleted},
	StateFailed:             {},
}

// CanTransition reports whether a checkout may move from one state to
// another. PartiallyCompleted may still reach Completed through a later
// user-initiated payment retry or a payment settlement event.
func CanTransition(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further automatic transition happens.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StatePartiallyCompleted
}
