// Package helper provides fixtures, arrange helpers and observability spies for StreamStore testing.
package helper
