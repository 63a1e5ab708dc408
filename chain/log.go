package chain

import "github.com/btcsuite/btclog"

// log is the package-level subsystem logger. It defaults to a no-op sink so
// that this package is silent when used as a library; vaultd's main wires
// a real backend via UseLogger at startup.
var log = btclog.Disabled

// UseLogger sets the logger used by this package. Should be called before
// any Client starts issuing RPCs.
func UseLogger(logger btclog.Logger) {
	log = logger
}
