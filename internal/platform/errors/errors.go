package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrExchangeInFlight    = errors.New("exchange already in flight")
	ErrNoToken             = errors.New("no session token")
	ErrTransport           = errors.New("progress endpoint unreachable")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrKeyExists           = errors.New("key file already exists")
	ErrInvalidEnvelope     = errors.New("invalid envelope")
)
