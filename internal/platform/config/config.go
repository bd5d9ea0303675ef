package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	// KafkaBrokers is reported by the event bus for deployment wiring only;
	// delivery is in-process and never dials these addresses.
	KafkaBrokers []string

	LedgerLockTimeout  time.Duration
	OutboxBatchSize    int
	WorkerPollInterval time.Duration

	EnableBallotNotifications bool
	EnableBallotAutoPromotion bool
}

const (
	keyServiceName        = "service_name"
	keyHTTPPort           = "http_port"
	keyPostgresDSN        = "postgres_dsn"
	keyKafkaBrokers       = "kafka_brokers"
	keyLedgerLockTimeout  = "ledger_lock_timeout"
	keyOutboxBatchSize    = "outbox_batch_size"
	keyWorkerPollInterval = "worker_poll_interval"
	keyNotifications      = "enable_ballot_notifications"
	keyAutoPromotion      = "enable_ballot_auto_promotion"
)

// Load reads configuration from the environment. Keys map to upper-case
// variables (ledger_lock_timeout -> LEDGER_LOCK_TIMEOUT); empty variables
// count as unset. Malformed values are reported rather than replaced.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(keyServiceName, "clubvote")
	v.SetDefault(keyHTTPPort, "8080")
	v.SetDefault(keyKafkaBrokers, "localhost:9092")
	v.SetDefault(keyLedgerLockTimeout, "5s")
	v.SetDefault(keyOutboxBatchSize, "100")
	v.SetDefault(keyWorkerPollInterval, "2s")
	v.SetDefault(keyNotifications, "true")
	v.SetDefault(keyAutoPromotion, "true")

	cfg := Config{
		ServiceName:  strings.TrimSpace(v.GetString(keyServiceName)),
		HTTPPort:     strings.TrimSpace(v.GetString(keyHTTPPort)),
		PostgresDSN:  strings.TrimSpace(v.GetString(keyPostgresDSN)),
		KafkaBrokers: splitList(v.GetString(keyKafkaBrokers)),
	}

	var err error
	if cfg.LedgerLockTimeout, err = duration(v, keyLedgerLockTimeout); err != nil {
		return Config{}, err
	}
	if cfg.WorkerPollInterval, err = duration(v, keyWorkerPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.WorkerPollInterval == 0 {
		return Config{}, fmt.Errorf("%s: must be positive", strings.ToUpper(keyWorkerPollInterval))
	}
	if cfg.OutboxBatchSize, err = positiveInt(v, keyOutboxBatchSize); err != nil {
		return Config{}, err
	}
	if cfg.EnableBallotNotifications, err = flag(v, keyNotifications); err != nil {
		return Config{}, err
	}
	if cfg.EnableBallotAutoPromotion, err = flag(v, keyAutoPromotion); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var items []string
	for _, value := range strings.Split(raw, ",") {
		if value = strings.TrimSpace(value); value != "" {
			items = append(items, value)
		}
	}
	return items
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	value, err := time.ParseDuration(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", strings.ToUpper(key), raw)
	}
	return value, nil
}

func positiveInt(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s: expected a positive integer, got %q", strings.ToUpper(key), raw)
	}
	return value, nil
}

func flag(v *viper.Viper, key string) (bool, error) {
	raw := strings.ToLower(strings.TrimSpace(v.GetString(key)))
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s: invalid boolean %q", strings.ToUpper(key), raw)
	}
}
