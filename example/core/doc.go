// Package core holds the domain events and decision types of the library example.
//
// The package knows nothing about the stream store, the shell package maps between both worlds.
package core
