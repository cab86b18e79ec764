package document

import "errors"

var (
	ErrParse           = errors.New("invalid document")
	ErrIO              = errors.New("file error")
	ErrRootNotMapping  = errors.New("document root is not a mapping")
	ErrEmptyDocument   = errors.New("document is empty")
	ErrTrailingData    = errors.New("unexpected data after top-level value")
	ErrUnsupportedKind = errors.New("unsupported node kind")
	ErrNonFiniteNumber = errors.New("number has no JSON representation")
)
