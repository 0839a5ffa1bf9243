package barvinok

import "github.com/sgreben/barvinok-go/options"

// Options is the parameter record every public entry point accepts
// explicitly (spec.md §5/§9): an owned RNG, a cancellation context, a debug
// flag, and the LLL delta constant. Defined in package options so that the
// engine's internal packages can depend on it without importing this root
// package (which in turn depends on them).
type Options = options.Options
