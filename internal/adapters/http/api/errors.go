package api

import (
	"errors"
	"net/http"

	"github.com/okian/medalgrid/internal/adapters/repository"
	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Error codes carried in error bodies.
const (
	codeBadRequest       = "bad_request"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternal         = "internal"
)

// KindError tags an error with the operation that failed and a sentinel kind.
// errors.Is matches both the kind and the wrapped cause.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

// WrapKind returns a KindError for op with the given kind and cause.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// NewKind returns a KindError without a cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

func (e *KindError) Error() string {
	msg := e.Op
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *KindError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// classify maps an error onto an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidRecord),
		errors.Is(err, rowmodel.ErrInvalidColumn),
		errors.Is(err, rowmodel.ErrInvalidFilter),
		errors.Is(err, rowmodel.ErrInvalidSort),
		errors.Is(err, rowmodel.ErrInvalidWindow):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, codeMethodNotAllowed
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
