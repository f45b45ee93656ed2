package workflow

import (
	"github.com/rs/zerolog/log"
)

// State is the progression of one save attempt. Committed and every
// failure state are terminal; an attempt is never reused.
type State string

const (
	StateIdle          State = "idle"
	StateValidating    State = "validating"
	StateRejected      State = "rejected"
	StateAuthorizing   State = "authorizing"
	StateForbidden     State = "forbidden"
	StateUploading     State = "uploading"
	StateUploadFailed  State = "upload_failed"
	StatePersisting    State = "persisting"
	StatePersistFailed State = "persist_failed"
	StateReconciling   State = "reconciling_aux"
	StateCommitted     State = "committed"
)

// attempt tracks the state of a single Save invocation for logging.
type attempt struct {
	kind  Kind
	state State
}

func newAttempt(kind Kind) *attempt {
	return &attempt{kind: kind, state: StateIdle}
}

func (a *attempt) transition(next State) {
	log.Debug().
		Str("kind", string(a.kind)).
		Str("from", string(a.state)).
		Str("to", string(next)).
		Msg("save attempt state")
	a.state = next
}
