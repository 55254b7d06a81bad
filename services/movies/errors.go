package movies

import "errors"

// DefaultFailureMessage is shown when TMDB gives no better explanation.
const DefaultFailureMessage = "Failed to fetch movies"

// FailureKind classifies where a fetch went wrong.
type FailureKind string

const (
	KindTransport FailureKind = "transport" // network error, timeout, cancelled context
	KindStatus    FailureKind = "status"    // non-2xx HTTP status
	KindUpstream  FailureKind = "upstream"  // body carried Response:false
	KindDecode    FailureKind = "decode"    // body was not the expected JSON
)

// FetchError is the single failure shape returned by Fetch. Both the HTTP
// status convention and the legacy payload flag collapse into it, so callers
// only ever read Message.
type FetchError struct {
	Kind    FailureKind
	Status  int // HTTP status when known
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Message extracts the user-facing text from any fetch error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}
