package engine

import "github.com/op/go-logging"

// log carries search diagnostics: per-depth progress lines, book hits,
// timeout notices. Embedders control verbosity through the go-logging
// backend configuration.
var log = logging.MustGetLogger("engine")
