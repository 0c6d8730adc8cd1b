package dtype

import "errors"

// ErrUnsupportedDtype is returned when a metadata record (or a config file)
// names a dtype outside the closed set declared in spec.md §3.
var ErrUnsupportedDtype = errors.New("dtype: unsupported element type")
