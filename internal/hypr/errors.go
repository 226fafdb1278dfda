package hypr

import "errors"

// ErrUnavailable is returned when the compositor's command or event socket
// is missing or refuses the connection.
var ErrUnavailable = errors.New("hypr: compositor socket unavailable")

// ErrMalformedResponse is returned when a query response cannot be
// decoded. Callers treat this the same as "no result".
var ErrMalformedResponse = errors.New("hypr: malformed compositor response")
