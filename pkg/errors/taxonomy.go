package errors

// Constructors for the errors raised across mode creation, task operations,
// rendering and output. Each one fills the details a caller needs to react
// without parsing messages.

// InvalidWindowSize reports a window mode constructed below its minimum size
func InvalidWindowSize(requested, minimum int, modeName string) *Error {
	return Newf(ErrInvalidWindowSize, "%s requires at least %d lines, got %d", modeName, minimum, requested).
		WithDetails(map[string]interface{}{
			"requested": requested,
			"minimum":   minimum,
			"mode_name": modeName,
		})
}

// MissingParameter reports a mode descriptor lacking a required parameter
func MissingParameter(modeName, param string) *Error {
	return Newf(ErrMissingParameter, "%s requires parameter %q", modeName, param).
		WithDetail("mode_name", modeName).
		WithDetail("parameter", param)
}

// Validation reports a parameter that is present but unacceptable
func Validation(format string, args ...interface{}) *Error {
	return Newf(ErrValidation, format, args...)
}

// Implementation reports a failure inside a mode constructor
func Implementation(detail string) *Error {
	return New(ErrImplementation, detail)
}

// UnknownTask reports an operation on a task id the coordinator does not hold
func UnknownTask(id uint64) *Error {
	return Newf(ErrUnknownTask, "unknown task %d", id).WithDetail("task_id", id)
}

// CapabilityNotSupported reports a capability operation the task's mode lacks
func CapabilityNotSupported(capability, modeName string) *Error {
	return Newf(ErrCapabilityNotSupported, "%s is not supported by %s mode", capability, modeName).
		WithDetail("capability", capability).
		WithDetail("mode_name", modeName)
}

// Template reports a malformed template directive
func Template(pos int, format string, args ...interface{}) *Error {
	return Newf(ErrTemplate, format, args...).WithDetail("position", pos)
}

// IO wraps a writer or file failure
func IO(err error, op string) *Error {
	return Wrap(err, ErrIO, op)
}
