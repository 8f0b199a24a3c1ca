// Package shell maps the domain events of the library example to stream store events and back.
package shell
