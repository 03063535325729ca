package presence

import "time"

// Config holds presence tracker configuration.
type Config struct {
	KeyPrefix string        `env:"PRESENCE_KEY_PREFIX" envDefault:"presence:"`
	TTL       time.Duration `env:"PRESENCE_TTL" envDefault:"60s"` // keys self-expire if the process dies without cleanup
}
