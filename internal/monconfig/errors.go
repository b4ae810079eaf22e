package monconfig

import "fmt"

// ConfigError wraps any failure encountered while loading or validating the
// configuration file. It is always fatal at startup (spec.md §7).
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
