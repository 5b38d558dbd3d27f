package internal

import (
	"fmt"
	"time"
)

const (
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=INFO"`
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`

	StoreDriver    string `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`
	SQLiteFilepath string `env:"SQLITE_FILEPATH,default=./data/session-lab.db"`

	CommandBufferSize    int `env:"COMMAND_BUFFER_SIZE,default=256"`
	ConnectionBufferSize int `env:"CONNECTION_BUFFER_SIZE,default=64"`
	TelemetryBufferSize  int `env:"TELEMETRY_BUFFER_SIZE,default=1024"`

	JoinTimeout           time.Duration `env:"JOIN_TIMEOUT,default=3s"`
	SubmitTimeout         time.Duration `env:"SUBMIT_TIMEOUT,default=2s"`
	AdminTimeout          time.Duration `env:"ADMIN_TIMEOUT,default=3s"`
	StoreTimeout          time.Duration `env:"STORE_TIMEOUT,default=2s"`
	SinkTimeout           time.Duration `env:"SINK_TIMEOUT,default=1s"`
	BufferTimeout         time.Duration `env:"BUFFER_TIMEOUT,default=2s"`
	PresenceTimeout       time.Duration `env:"PRESENCE_TIMEOUT,default=30s"`
	PresenceSweepInterval time.Duration `env:"PRESENCE_SWEEP_INTERVAL,default=5s"`
	SessionMaxDuration    time.Duration `env:"SESSION_MAX_DURATION,default=8h"`

	MaxParticipants        int    `env:"MAX_PARTICIPANTS,default=0"`
	CapacityWarningPercent int    `env:"CAPACITY_WARNING_PERCENT,default=90"`
	AlertHistorySize       int    `env:"ALERT_HISTORY_SIZE,default=50"`
	WordCloudMaxWords      int    `env:"WORD_CLOUD_MAX_WORDS,default=100"`
	CharReplacement        string `env:"CHARACTER_REPLACEMENT,default=*"`

	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=10s"`
	LatencyThreshold     time.Duration `env:"LATENCY_THRESHOLD,default=250ms"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=10"`

	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=12h"`
	AdminID           string        `env:"ADMIN_ID,required=true"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH,required=true"`

	// Zero disables the debug inspector.
	DebugPort int `env:"DEBUG_PORT,default=0"`
}

// Validate checks what the env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreBadger, StoreSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreBadger, StoreSQLite, c.StoreDriver)
	}
	if len(c.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be at least 32 bytes")
	}
	if c.CapacityWarningPercent <= 0 || c.CapacityWarningPercent > 100 {
		return fmt.Errorf("CAPACITY_WARNING_PERCENT must be within 1..100, got %d", c.CapacityWarningPercent)
	}
	_, err := CharacterRune(c.CharReplacement)
	return err
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
