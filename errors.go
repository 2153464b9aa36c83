package qdevice

import (
	"github.com/pkg/errors"
)

/*
The adapter reports three failure kinds. Every error returned by this package
wraps exactly one of these sentinels, so callers classify failures with
errors.Is instead of matching on message text.
*/
var (
	// ErrInvalidArgument covers unmapped wires, wrong wire arity, control
	// length mismatches, unknown observable handles and bad buffer sizes.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDomain covers unrecognized gate names and noisy multi-shot requests.
	ErrDomain = errors.New("domain error")

	// ErrRuntime covers allocation beyond the register capacity.
	ErrRuntime = errors.New("runtime error")
)

func invalidArgument(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

func domainError(format string, args ...any) error {
	return errors.Wrapf(ErrDomain, format, args...)
}

func runtimeError(format string, args ...any) error {
	return errors.Wrapf(ErrRuntime, format, args...)
}
