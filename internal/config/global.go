// SPDX-License-Identifier: MPL-2.0

package config

import "sync"

var (
	globalMu sync.RWMutex
	global   *Config
)

// Global returns the process-wide configuration, loading it on first use.
// A load failure falls back to defaults; commands that care about the
// failure call Load directly.
func Global() *Config {
	globalMu.RLock()
	if global != nil {
		defer globalMu.RUnlock()
		return global
	}
	globalMu.RUnlock()

	cfg, err := Load(LoadOptions{})
	if err != nil {
		cfg = Default()
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = cfg
	}
	return global
}

// SetGlobal replaces the process-wide configuration. Tests use it to inject
// a known config; it returns a restore function.
func SetGlobal(cfg *Config) func() {
	globalMu.Lock()
	prev := global
	global = cfg
	globalMu.Unlock()
	return func() {
		globalMu.Lock()
		global = prev
		globalMu.Unlock()
	}
}
