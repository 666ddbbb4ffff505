// Package server assembles the HTTP services from their components.
//
// Construction happens once at process start: configuration drives the
// logger, metrics, tracer, exporter, queue publisher, and downstream
// clients, which are passed explicitly to the handlers. There is no
// package-level mutable state; each process owns exactly one instance of
// each component.
package server
