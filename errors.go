package cybersource

import (
	"fmt"
	"net/http"
)

// InvalidArgumentError is returned when a setter receives a value of an
// unsupported type, such as a reference code that is neither a string
// nor a number.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("cybersource: invalid argument: %s", e.Reason)
}

// MissingFieldError is returned by the pre-flight check when a field
// the operation requires has not been set on the client.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("cybersource: %s is required", e.Field)
}

// HTTPError is returned when CyberSource responds with a non-2xx HTTP
// status and no parseable SOAP body.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
	Headers    http.Header
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("cybersource: http error %d (%s): %s", e.StatusCode, e.Status, e.Body)
}

// SOAPFault represents a SOAP fault returned by CyberSource, such as an
// authentication rejection or a malformed request.
type SOAPFault struct {
	FaultCode   string
	FaultString string
	RawBody     []byte
}

func (e *SOAPFault) Error() string {
	return fmt.Sprintf("cybersource: soap fault [%s]: %s", e.FaultCode, e.FaultString)
}
