package config

import (
	"strings"
	"testing"
)

const sampleYAML = `
database:
  host: db.internal
  port: 5433
  user: seryvo
  password: "s3cret"
  database: seryvo

rabbitmq:
  host: mq.internal
  port: 5672
  user: guest
  password: guest

redis:
  addr: cache.internal:6379
  geo_key: drivers_geo

kafka:
  brokers: broker-1:9092, broker-2:9092
  topic: driver-locations

backend:
  base_url: http://dispatch.internal:8000
  timeout_seconds: 5

controller:
  offer_ttl_seconds: 45
  location_interval_seconds: 3

services:
  driver_gateway: 3002
  location_relay: 3003

jwt:
  secret_key: 'unit-test-secret'

stripe:
  api_key: sk_test_123
`

func TestParseYAMLFullConfig(t *testing.T) {
	var cfg Config
	if err := parseYAML(strings.NewReader(sampleYAML), &cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Database.Password != "s3cret" {
		t.Fatalf("quotes not stripped: %q", cfg.Database.Password)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Controller.OfferTTLSeconds != 45 {
		t.Fatalf("offer ttl = %d", cfg.Controller.OfferTTLSeconds)
	}
	if cfg.JWT.SecretKey != "unit-test-secret" {
		t.Fatalf("jwt secret = %q", cfg.JWT.SecretKey)
	}
}

func TestParseYAMLRejectsUnknownKeys(t *testing.T) {
	bad := "database:\n  hostname: nope\n"
	var cfg Config
	if err := parseYAML(strings.NewReader(bad), &cfg); err == nil {
		t.Fatal("expected error for unknown key")
	}

	bad = "clustering:\n  nodes: 3\n"
	if err := parseYAML(strings.NewReader(bad), &cfg); err == nil {
		t.Fatal("expected error for unknown section")
	}
}

func TestDefaultsAndDurations(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	if cfg.Controller.OfferTTLSeconds != 30 {
		t.Fatalf("default offer ttl = %d", cfg.Controller.OfferTTLSeconds)
	}
	if cfg.OfferTTL().Seconds() != 30 {
		t.Fatalf("OfferTTL = %v", cfg.OfferTTL())
	}
	if cfg.Services.GatewayPort != 3002 || cfg.Services.RelayPort != 3003 {
		t.Fatalf("service ports = %+v", cfg.Services)
	}
	if cfg.JWT.SecretKey == "" {
		t.Fatal("expected a generated fallback JWT secret")
	}
}
