package sqlfrag

// Factory builds a Builder and renders its own placeholder join convention:
// a host-provided hook over how parameterized fragments are constructed and
// concatenated. The package-level default needs no configuration at all;
// every compiler reaches the active Factory implicitly through the
// package-level NewBuilder and Join.
type Factory struct {
	// NewBuilder constructs a fresh, empty Builder. Must not call the
	// package-level NewBuilder, which routes back here.
	NewBuilder func() *Builder
	// Join concatenates Fragments the same way the package-level default
	// does. Must not call the package-level Join.
	Join func(sep string, frags ...Fragment) Fragment
}

// defaultFactory is what every compiler uses unless SetFactory has been
// called.
var defaultFactory Factory

var factoryConfigured bool

func init() {
	defaultFactory = Factory{
		NewBuilder: newBuilder,
		Join:       join,
	}
}

// SetFactory registers f as the process-wide Factory used by every
// compiler in this module. This is a one-time handshake: call it
// once, before the first Builder is built, during process startup. Calling
// it again after any compilation has already run is not a supported mode —
// behavior in that case is undefined. Most callers never need
// this; it exists only for a host that wants to intercept every emitted
// fragment (for example, to collect metrics on fragment sizes).
func SetFactory(f Factory) {
	defaultFactory = f
	factoryConfigured = true
}

// CurrentFactory returns the active Factory: the one passed to the most
// recent SetFactory call, or the package default.
func CurrentFactory() Factory {
	return defaultFactory
}

// IsConfigured reports whether SetFactory has been called.
func IsConfigured() bool {
	return factoryConfigured
}
