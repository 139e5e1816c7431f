package config

import (
	"log"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	DBDSN          string
	LogFile        string
	StoreTimeout   time.Duration
	AcceptPolicy   string // explicit | on_confirm
	SeedDemo       bool
	KafkaBrokers   []string
	KafkaTopic     string
	OutboxInterval time.Duration
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "farmdirect.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./farmdirect.log" // default log sink in project root
	}
	policy := strings.ToLower(strings.TrimSpace(os.Getenv("ACCEPT_POLICY")))
	if policy != "on_confirm" {
		policy = "explicit"
	}
	var brokers []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "farmdirect.deals"
	}

	cfg := Config{
		Port:           port,
		DBDSN:          dsn,
		LogFile:        logFile,
		StoreTimeout:   duration("STORE_TIMEOUT", 5*time.Second),
		AcceptPolicy:   policy,
		SeedDemo:       os.Getenv("SEED_DEMO") == "1" || strings.EqualFold(os.Getenv("SEED_DEMO"), "true"),
		KafkaBrokers:   brokers,
		KafkaTopic:     topic,
		OutboxInterval: duration("OUTBOX_INTERVAL", 2*time.Second),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s STORE_TIMEOUT=%s ACCEPT_POLICY=%s KAFKA_BROKERS=%v",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.StoreTimeout, cfg.AcceptPolicy, cfg.KafkaBrokers)
	return cfg
}

func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
