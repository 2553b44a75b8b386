package wall

import "fmt"

// CommandError is a user-facing command failure: bad syntax, unknown verb,
// missing authorization, or a missing list. The wall relays its message to
// the original sender as a single SMS reply. Anything that is not a
// CommandError (store failures in particular) propagates to the caller of
// HandleIncoming instead of being turned into a reply.
type CommandError struct {
	Reply string
}

func (e *CommandError) Error() string {
	return e.Reply
}

func commandErrorf(format string, args ...interface{}) *CommandError {
	return &CommandError{Reply: fmt.Sprintf(format, args...)}
}
