package level

import "errors"

// ErrNotAnActionLevel is returned by Arg/NumArgs when called on a Level
// that has no varlist (i.e. is not an action invocation).
var ErrNotAnActionLevel = errors.New("level: not an action level")
