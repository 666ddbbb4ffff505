// Package http contains the HTTP handlers for the gateway and the
// classification service.
//
// The handlers are thin request/response shims: binding, one or two
// collaborator calls, and status mapping. All real coordination lives in
// the queue and downstream packages. Downstream failures map to 502 with
// a fixed detail message; publish failures abort the request with 500.
package http
