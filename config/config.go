// Package config loads engine settings: compiled defaults, then an
// optional YAML file named by FREYR_CONFIG, then FREYR_* environment
// overrides, strongest last.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		GRPCAddr string `yaml:"grpc_addr"`
	} `yaml:"server"`
	Market struct {
		DepthSize int      `yaml:"depth_size"`
		Symbols   []uint64 `yaml:"symbols"`
	} `yaml:"market"`
	Journal struct {
		Dir         string `yaml:"dir"`
		SegmentSize int64  `yaml:"segment_size_bytes"`
		SyncEvery   bool   `yaml:"sync_every_append"`
	} `yaml:"journal"`
	Snapshot struct {
		Dir             string `yaml:"dir"`
		IntervalSeconds int    `yaml:"interval_seconds"`
	} `yaml:"snapshot"`
	Outbox struct {
		Dir string `yaml:"dir"`
	} `yaml:"outbox"`
	Kafka struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		StreamTopic string   `yaml:"stream_topic"`
		TradeTopic  string   `yaml:"trade_topic"`
	} `yaml:"kafka"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.GRPCAddr = ":7070"
	c.Market.DepthSize = 10
	c.Market.Symbols = []uint64{1}
	c.Journal.Dir = "data/journal"
	c.Journal.SegmentSize = 64 << 20
	c.Journal.SyncEvery = true
	c.Snapshot.Dir = "data/snapshot"
	c.Snapshot.IntervalSeconds = 60
	c.Outbox.Dir = "data/outbox"
	c.Kafka.Enabled = false
	c.Kafka.Brokers = []string{"localhost:9092"}
	c.Kafka.StreamTopic = "freyr.stream"
	c.Kafka.TradeTopic = "freyr.trades"
	return c
}

func Load() Config {
	c := defaultConfig()
	if path := os.Getenv("FREYR_CONFIG"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	if v := os.Getenv("FREYR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FREYR_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("FREYR_GRPC_ADDR"); v != "" {
		c.Server.GRPCAddr = v
	}
	if v := os.Getenv("FREYR_DEPTH_SIZE"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Market.DepthSize = n
		}
	}
	if v := os.Getenv("FREYR_SYMBOLS"); v != "" {
		if syms := parseSymbols(v); len(syms) > 0 {
			c.Market.Symbols = syms
		}
	}
	if v := os.Getenv("FREYR_JOURNAL_DIR"); v != "" {
		c.Journal.Dir = v
	}
	if v := os.Getenv("FREYR_SNAPSHOT_DIR"); v != "" {
		c.Snapshot.Dir = v
	}
	if v := os.Getenv("FREYR_OUTBOX_DIR"); v != "" {
		c.Outbox.Dir = v
	}
	if v := os.Getenv("FREYR_KAFKA_ENABLED"); v == "1" || v == "true" {
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("FREYR_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitCSV(v)
	}
	if v := os.Getenv("FREYR_KAFKA_STREAM_TOPIC"); v != "" {
		c.Kafka.StreamTopic = v
	}
	if v := os.Getenv("FREYR_KAFKA_TRADE_TOPIC"); v != "" {
		c.Kafka.TradeTopic = v
	}
	return c
}

func parseSymbols(s string) []uint64 {
	var out []uint64
	for _, part := range splitCSV(s) {
		var sym uint64
		if _, err := fmt.Sscan(part, &sym); err == nil && sym > 0 {
			out = append(out, sym)
		}
	}
	return out
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
