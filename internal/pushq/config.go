package pushq

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups all tunables. Values are taken from environment variables
// with the prefix "PW_PUSHQ_". Example: PW_PUSHQ_SHARDS=4 .
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"2"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"64"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"50ms"`

	// ErrorHandler is called synchronously after a handler returns a
	// non-nil error. Leave nil if you do not care.
	ErrorHandler func(error) `envconfig:"-"`
}

// LoadConfig populates Config from environment variables (prefix PW_PUSHQ).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("PW_PUSHQ", &c)
}
