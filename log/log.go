// Package log centralizes subsystem logger wiring for vaultd. Each package
// in this module keeps its own package-level `log` variable and a
// `UseLogger` setter; this package is the only place that constructs a
// concrete btclog.Backend and registers every subsystem tag against it.
package log

import (
	"os"

	"github.com/btcsuite/btclog"

	"github.com/clearvault/vaultd/api"
	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/monitor"
	"github.com/clearvault/vaultd/notify"
	"github.com/clearvault/vaultd/store"
	"github.com/clearvault/vaultd/tracker"
	"github.com/clearvault/vaultd/txbuilder"
	"github.com/clearvault/vaultd/txsubmit"
	"github.com/clearvault/vaultd/vault"
)

// subsystem tags, four characters to line up in log output the way lnd's
// ltndLog/rpcsLog/peerLog tags do.
const (
	TagVaultManager  = "VLMG"
	TagChainClient   = "CHCL"
	TagCacheStore    = "CSTR"
	TagBalanceTrack  = "BTRK"
	TagVaultMonitor  = "VMON"
	TagNotifyRegistry = "NREG"
	TagTxBuilder     = "TXBD"
	TagTxSubmitter   = "TXSB"
	TagAPI           = "API "
)

var backend = btclog.NewBackend(logWriter{os.Stdout})

type logWriter struct {
	w *os.File
}

func (l logWriter) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

// subsystemLoggers mirrors the subsystem registry pattern used across lnd's
// main package, kept here in one place since this module has no separate
// CLI-exposed `debuglevel` subcommand.
var subsystemLoggers = make(map[string]btclog.Logger)

// Logger returns (and lazily creates) the logger for the given subsystem
// tag, defaulting to info level.
func Logger(tag string) btclog.Logger {
	if l, ok := subsystemLoggers[tag]; ok {
		return l
	}

	l := backend.Logger(tag)
	l.SetLevel(btclog.LevelInfo)
	subsystemLoggers[tag] = l
	return l
}

// SetLevel changes the level of every registered subsystem logger. Accepts
// the standard btclog level names (trace, debug, info, warn, error,
// critical, off).
func SetLevel(levelName string) {
	level, ok := btclog.LevelFromString(levelName)
	if !ok {
		return
	}
	for _, l := range subsystemLoggers {
		l.SetLevel(level)
	}
}

// InitSubsystems wires every package's package-level logger to this
// backend. Call once at process startup before any subsystem runs.
func InitSubsystems() {
	chain.UseLogger(Logger(TagChainClient))
	store.UseLogger(Logger(TagCacheStore))
	vault.UseLogger(Logger(TagVaultManager))
	tracker.UseLogger(Logger(TagBalanceTrack))
	monitor.UseLogger(Logger(TagVaultMonitor))
	notify.UseLogger(Logger(TagNotifyRegistry))
	txbuilder.UseLogger(Logger(TagTxBuilder))
	txsubmit.UseLogger(Logger(TagTxSubmitter))
	api.UseLogger(Logger(TagAPI))
}
