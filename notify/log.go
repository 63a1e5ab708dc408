package notify

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger sets the logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
