// SPDX-License-Identifier: Apache-2.0

package walletcore

import "github.com/lazorkit/wallet-core/config"

// Option configures a Dispatcher, mirroring the functional-options pattern
// the codec layer's teacher uses for its own top-level type.
type Option func(*Options)

// Options holds every dispatcher-wide setting. LogCb defaults to a no-op:
// the core never writes to stdout on its own (SPEC_FULL.md §A.2).
type Options struct {
	LogCb   func(format string, args ...any)
	Verbose bool
	Config  config.Config
}

// WithLogCb installs a diagnostic log sink.
func WithLogCb(logCb func(format string, args ...any)) Option {
	return func(o *Options) {
		o.LogCb = logCb
	}
}

// WithVerbose sets Options.Verbose, which the dispatcher copies into each
// handler's context. No code reads it: every LogCb call site (dispatch
// routing, plugin CPI rejection) logs whether or not it is set.
func WithVerbose() Option {
	return func(o *Options) {
		o.Verbose = true
	}
}

// WithConfig overrides the CPI whitelist / precompile id configuration,
// otherwise defaulted by config.Default().
func WithConfig(cfg config.Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

func defaultOptions() *Options {
	return &Options{
		LogCb:  func(string, ...any) {},
		Config: config.Default(),
	}
}

func (o *Options) log(format string, args ...any) {
	if o.LogCb != nil {
		o.LogCb(format, args...)
	}
}
