//nolint:revive // Package name 'interfaces' is intentional for domain layer
package interfaces

// Environment is the CI runner surface the installer reports back to
type Environment interface {
	// SetOutput publishes a job output value
	SetOutput(name, value string) error

	// AddPath prepends dir to the command search path of subsequent steps
	AddPath(dir string) error
}
