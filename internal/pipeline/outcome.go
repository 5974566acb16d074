package pipeline

// Disposition tags a handler outcome.
type Disposition int

const (
	// DispositionContinue hands the message to the next handler.
	DispositionContinue Disposition = iota
	// DispositionDiscard aborts the chain and drops the message.
	DispositionDiscard
	// DispositionReject aborts the chain and routes the original message
	// toward a sender-facing rejection notice.
	DispositionReject
)

// Outcome is the tagged result of one handler invocation. Discard and
// Reject are expected control flow, never errors.
type Outcome struct {
	Disposition Disposition
	Reason      string
}

// Continue proceeds to the next handler in the chain.
func Continue() Outcome { return Outcome{Disposition: DispositionContinue} }

// Discard aborts processing and silently drops the message. The reason is
// recorded in the audit log only.
func Discard(reason string) Outcome {
	return Outcome{Disposition: DispositionDiscard, Reason: reason}
}

// Reject aborts processing; the original message is queued so the sender
// eventually receives a rejection notice carrying the reason.
func Reject(reason string) Outcome {
	return Outcome{Disposition: DispositionReject, Reason: reason}
}
