package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrStoreUnavailable  = fmt.Errorf("message store unavailable")
	ErrUnknownBackend    = fmt.Errorf("unknown store backend")
	ErrMalformedPayload  = fmt.Errorf("malformed payload")
	ErrPersistenceFailed = fmt.Errorf("persistence failed")
	ErrSendBufferFull    = fmt.Errorf("connection send buffer full")
	ErrConnectionClosed  = fmt.Errorf("connection closed")
	ErrSessionNotActive  = fmt.Errorf("session not active")
)
