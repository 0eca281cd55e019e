package cell

import "errors"

// ErrProtected is returned by Copy (and by any mutating series/context
// operation) when the destination cell refused the write.
var ErrProtected = errors.New("cell: protected cell refuses write")
