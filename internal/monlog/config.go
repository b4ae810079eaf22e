// Package monlog provides the structured logger shared by every component
// of the monitor pipeline.
package monlog

// Config controls log output rotation and verbosity.
type Config struct {
	LogFile     string
	MaxSize     int // megabytes
	MaxAge      int // days
	MaxBackups  int
	Compress    bool
	Development bool
}

// DefaultConfig returns sane defaults for a long-running process.
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "monitor.log",
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: false,
	}
}
