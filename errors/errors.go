package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Domain is reported in the ErrorInfo detail of every gRPC error.
const Domain = "session-lab"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrOnlyCensoredFiles = fmt.Errorf("censored directory contains directories")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
	ErrInvalidToken      = fmt.Errorf("invalid or expired token")
	ErrInvalidPassword   = fmt.Errorf("invalid admin credentials")
	ErrMalformedHash     = fmt.Errorf("malformed admin password hash")
)

// Code is the machine-readable reason returned to clients.
type Code string

const (
	CodeSessionNotFound     Code = "SESSION_NOT_FOUND"
	CodeSessionEnded        Code = "SESSION_ENDED"
	CodeQuestionClosed      Code = "QUESTION_CLOSED"
	CodeQuestionNotFound    Code = "QUESTION_NOT_FOUND"
	CodeParticipantNotFound Code = "PARTICIPANT_NOT_FOUND"
	CodeInvalidPayload      Code = "INVALID_PAYLOAD"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeCapacityExceeded    Code = "CAPACITY_EXCEEDED"
	CodeTimeout             Code = "TIMEOUT"
	CodeStoreUnavailable    Code = "STORE_UNAVAILABLE"
	CodeCodeInUse           Code = "CODE_IN_USE"
	CodeForbidden           Code = "FORBIDDEN"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
)

// Error carries a Code plus an optional cause.
// Two errors are equal for errors.Is when their codes match.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	var t *Error
	if stderrors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrSessionNotFound     = &Error{Code: CodeSessionNotFound, Message: "session not found"}
	ErrSessionEnded        = &Error{Code: CodeSessionEnded, Message: "session has ended"}
	ErrQuestionClosed      = &Error{Code: CodeQuestionClosed, Message: "question is closed"}
	ErrQuestionNotFound    = &Error{Code: CodeQuestionNotFound, Message: "question not found"}
	ErrParticipantNotFound = &Error{Code: CodeParticipantNotFound, Message: "participant not found"}
	ErrInvalidPayload      = &Error{Code: CodeInvalidPayload, Message: "invalid payload"}
	ErrInvalidTransition   = &Error{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrCapacityExceeded    = &Error{Code: CodeCapacityExceeded, Message: "session is full"}
	ErrTimeout             = &Error{Code: CodeTimeout, Message: "session actor did not answer in time"}
	ErrStoreUnavailable    = &Error{Code: CodeStoreUnavailable, Message: "durable store unavailable"}
	ErrCodeInUse           = &Error{Code: CodeCodeInUse, Message: "session code already in use"}
	ErrForbidden           = &Error{Code: CodeForbidden, Message: "operation not allowed for caller"}
	ErrInvalidArgument     = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
)

// New builds an error of the given code with a specific message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a coded error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in the chain, or "" when none.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GRPCCode maps a domain code to the closest gRPC status code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeSessionNotFound, CodeQuestionNotFound, CodeParticipantNotFound:
		return codes.NotFound
	case CodeSessionEnded, CodeQuestionClosed, CodeInvalidTransition:
		return codes.FailedPrecondition
	case CodeInvalidPayload, CodeInvalidArgument:
		return codes.InvalidArgument
	case CodeCapacityExceeded:
		return codes.ResourceExhausted
	case CodeTimeout:
		return codes.DeadlineExceeded
	case CodeStoreUnavailable:
		return codes.Unavailable
	case CodeCodeInUse:
		return codes.AlreadyExists
	case CodeForbidden:
		return codes.PermissionDenied
	default:
		return codes.Internal
	}
}

// MapToGRPCError converts any error into a gRPC status error.
// Coded errors carry an ErrorInfo detail whose Reason is the code.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var e *Error
	if !stderrors.As(err, &e) {
		return status.Error(codes.Internal, err.Error())
	}
	st := status.New(e.Code.GRPCCode(), err.Error())
	detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: string(e.Code),
		Domain: Domain,
	})
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// FromGRPCError recovers the domain code from a gRPC status produced by MapToGRPCError.
func FromGRPCError(err error) Code {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.Domain == Domain {
			return Code(info.Reason)
		}
	}
	return ""
}

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

// Durable classifies a persistence failure. Coded errors pass through untouched,
// anything else becomes StoreUnavailable so it is never mistaken for a client fault.
func Durable(err error) error {
	if err == nil || CodeOf(err) != "" {
		return err
	}
	return Wrap(CodeStoreUnavailable, "durable store unavailable", err)
}
