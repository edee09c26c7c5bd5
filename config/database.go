package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	// URL is a full connection string (the one Supabase shows). When set it replaces the discrete fields.
	URL      string `env:"URL"`
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"equihire"`
	Password string `env:"PASSWORD" envDefault:"equihire"`
	Name     string `env:"NAME"     envDefault:"equihire"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'require' for hosted Postgres (Supabase)
	// Pooler marks a transaction-mode pooler such as Supabase's port 6543, which cannot hold
	// prepared statements between transactions.
	Pooler          bool          `env:"POOLER"            envDefault:"false"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"    envDefault:"15"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Sanitize keeps pool settings usable; hosted plans cap connections, so the pool stays small.
func (c *DBConfig) Sanitize() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 15
	}
	if c.MaxIdleConns < 0 {
		c.MaxIdleConns = 0
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
}

// RedisConfig contains Redis configuration for sessions and the membership cache.
type RedisConfig struct {
	// URL accepts redis:// or rediss:// (TLS, as hosted Redis requires). A bare host:port also works.
	URL string `env:"URL" envDefault:"redis://localhost:6379/0"`
	// Password overrides any password in URL.
	Password string `env:"PASSWORD"`
	PoolSize int    `env:"POOL_SIZE" envDefault:"10"`
}

// CacheConfig contains cache configuration (Redis-based).
type CacheConfig struct {
	// OrgTTL is how long a positive organization membership lookup is cached.
	OrgTTL time.Duration `env:"ORG_CACHE_TTL" envDefault:"5m"`
}

// Sanitize keeps the membership cache TTL within sane bounds.
func (c *CacheConfig) Sanitize() {
	if c.OrgTTL <= 0 {
		c.OrgTTL = 5 * time.Minute
	}
	if c.OrgTTL > 24*time.Hour {
		c.OrgTTL = 24 * time.Hour
	}
}
