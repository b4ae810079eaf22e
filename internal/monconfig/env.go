package monconfig

import (
	"fmt"
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnv replaces every ${NAME} occurrence in raw with the value of
// the environment variable NAME. An unset variable is a load error, per
// spec.md §6.
func interpolateEnv(raw []byte) ([]byte, error) {
	var firstErr error
	result := envVarPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		if firstErr != nil {
			return match
		}
		name := envVarPattern.FindSubmatch(match)[1]
		val, ok := os.LookupEnv(string(name))
		if !ok {
			firstErr = fmt.Errorf("environment variable %q referenced in config is not set", name)
			return match
		}
		return []byte(val)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}
