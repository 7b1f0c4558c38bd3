// Package providers talks to the chat-completions endpoint that performs the
// analysis and synthesis calls.
//
// Each call is a single synchronous POST with bearer authentication and a
// fixed temperature of 0. There is no automatic retry: callers see every
// failure as one of three typed errors (ServiceError, TransportError,
// MalformedResponseError) tagged with the stage that produced it.
//
// The HTTP client is injected through a field so tests can point calls at
// httptest servers.
package providers
