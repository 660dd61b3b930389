package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	BackendURL       string        `env:"PAIRPAD_BACKEND_URL,default=http://localhost:8080"`
	DisplayName      string        `env:"PAIRPAD_DISPLAY_NAME"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	DebounceInterval time.Duration `env:"DEBOUNCE_INTERVAL,default=300ms"`
	ReconnectDelay   time.Duration `env:"RECONNECT_DELAY,default=5s"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT,default=90s"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
	HeartbeatPeriod  time.Duration `env:"HEARTBEAT_PERIOD,default=30s"`
	JournalPath      string        `env:"JOURNAL_PATH"`
	IndexPath        string        `env:"INDEX_PATH"`
	CensoredWords    string        `env:"CENSORED_WORDS"`
	CharReplacement  string        `env:"CHARACTER_REPLACEMENT,default=*"`

	// Devserver only.
	Host         string        `env:"HOST,default=localhost"`
	Port         int           `env:"PORT,default=8080"`
	PingInterval time.Duration `env:"PING_INTERVAL,default=30s"`
}

// WordList splits the comma separated CENSORED_WORDS value. Empty entries
// are dropped, so a trailing comma is harmless.
func (c Config) WordList() []string {
	var words []string
	for _, word := range strings.Split(c.CensoredWords, ",") {
		if trimmed := strings.TrimSpace(word); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
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
