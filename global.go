// SPDX-License-Identifier: Apache-2.0

package walletcore

var globalDispatcher *Dispatcher

// GlobalDispatcher returns a lazily-constructed default Dispatcher, a test
// and quick-start convenience mirroring the codec layer's own global
// singleton accessor.
func GlobalDispatcher() *Dispatcher {
	if globalDispatcher == nil {
		globalDispatcher = NewDispatcher()
	}
	return globalDispatcher
}

// SetGlobalOptions replaces the global Dispatcher with one built from opts.
func SetGlobalOptions(opts ...Option) {
	globalDispatcher = NewDispatcher(opts...)
}
