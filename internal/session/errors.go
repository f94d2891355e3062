package session

import "errors"

// ErrUnknownFormat is returned for input formats other than json and yaml.
var ErrUnknownFormat = errors.New("unknown input format")
