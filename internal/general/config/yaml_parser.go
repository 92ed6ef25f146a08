package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseYAML parses the specific two-level mapping used by config.yaml
func parseYAML(r io.Reader, cfg *Config) error {
	type section int
	const (
		none section = iota
		db
		rm
		rd
		kf
		be
		ct
		sv
		jw
		st
	)

	sections := map[string]section{
		"database:":   db,
		"rabbitmq:":   rm,
		"redis:":      rd,
		"kafka:":      kf,
		"backend:":    be,
		"controller:": ct,
		"services:":   sv,
		"jwt:":        jw,
		"stripe:":     st,
	}

	scanner := bufio.NewScanner(r)
	var cur section

	lineNo := 0
	seenTop := map[section]bool{}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		// strip comments
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}

		line := strings.TrimRight(raw, " \t\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// top-level section? (no leading spaces)
		if len(line) > 0 && (line[0] != ' ' && line[0] != '\t') {
			top := strings.TrimSpace(line)
			sec, ok := sections[top]
			if !ok {
				return fmt.Errorf("line %d: unknown top-level key %q", lineNo, strings.TrimSuffix(top, ":"))
			}
			if seenTop[sec] {
				return fmt.Errorf("line %d: duplicate %q section", lineNo, strings.TrimSuffix(top, ":"))
			}
			seenTop[sec] = true
			cur = sec
			continue
		}

		// expect indented "key: value"
		if cur == none {
			return fmt.Errorf("line %d: key without a section", lineNo)
		}
		trim := strings.TrimSpace(line)
		colon := strings.IndexByte(trim, ':')
		if colon <= 0 {
			return fmt.Errorf("line %d: expected 'key: value'", lineNo)
		}
		key := strings.TrimSpace(trim[:colon])
		val := strings.TrimLeft(strings.TrimSpace(trim[colon+1:]), " \t")

		switch cur {
		case db:
			switch key {
			case "host":
				cfg.Database.Host = resolveScalar(val)
			case "port":
				p, err := parseInt("database.port", val, lineNo)
				if err != nil {
					return err
				}
				cfg.Database.Port = p
			case "user":
				cfg.Database.User = resolveScalar(val)
			case "password":
				cfg.Database.Password = resolveScalar(val)
			case "database":
				cfg.Database.Name = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in database: %q", lineNo, key)
			}
		case rm:
			switch key {
			case "host":
				cfg.RabbitMQ.Host = resolveScalar(val)
			case "port":
				p, err := parseInt("rabbitmq.port", val, lineNo)
				if err != nil {
					return err
				}
				cfg.RabbitMQ.Port = p
			case "user":
				cfg.RabbitMQ.User = resolveScalar(val)
			case "password":
				cfg.RabbitMQ.Password = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in rabbitmq: %q", lineNo, key)
			}
		case rd:
			switch key {
			case "addr":
				cfg.Redis.Addr = resolveScalar(val)
			case "password":
				cfg.Redis.Password = resolveScalar(val)
			case "geo_key":
				cfg.Redis.GeoKey = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in redis: %q", lineNo, key)
			}
		case kf:
			switch key {
			case "brokers":
				for _, b := range strings.Split(resolveScalar(val), ",") {
					if b = strings.TrimSpace(b); b != "" {
						cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
					}
				}
			case "topic":
				cfg.Kafka.Topic = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in kafka: %q", lineNo, key)
			}
		case be:
			switch key {
			case "base_url":
				cfg.Backend.BaseURL = resolveScalar(val)
			case "timeout_seconds":
				p, err := parseInt("backend.timeout_seconds", val, lineNo)
				if err != nil {
					return err
				}
				cfg.Backend.TimeoutSeconds = p
			default:
				return fmt.Errorf("line %d: unknown key in backend: %q", lineNo, key)
			}
		case ct:
			switch key {
			case "offer_ttl_seconds":
				p, err := parseInt("controller.offer_ttl_seconds", val, lineNo)
				if err != nil {
					return err
				}
				cfg.Controller.OfferTTLSeconds = p
			case "location_interval_seconds":
				p, err := parseInt("controller.location_interval_seconds", val, lineNo)
				if err != nil {
					return err
				}
				cfg.Controller.LocationIntervalSeconds = p
			default:
				return fmt.Errorf("line %d: unknown key in controller: %q", lineNo, key)
			}
		case sv:
			switch key {
			case "driver_gateway":
				p, err := parseInt("services.driver_gateway", val, lineNo)
				if err != nil {
					return err
				}
				cfg.Services.GatewayPort = p
			case "location_relay":
				p, err := parseInt("services.location_relay", val, lineNo)
				if err != nil {
					return err
				}
				cfg.Services.RelayPort = p
			default:
				return fmt.Errorf("line %d: unknown key in services: %q", lineNo, key)
			}
		case jw:
			switch key {
			case "secret_key":
				cfg.JWT.SecretKey = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in jwt: %q", lineNo, key)
			}
		case st:
			switch key {
			case "api_key":
				cfg.Stripe.APIKey = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in stripe: %q", lineNo, key)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return nil
}

func parseInt(field, val string, lineNo int) (int, error) {
	p, err := strconv.Atoi(resolveScalar(val))
	if err != nil {
		return 0, fmt.Errorf("line %d: %s must be int: %v", lineNo, field, err)
	}
	return p, nil
}

// resolveScalar trims whitespace and removes surrounding quotes from YAML-like scalars.
// For example:
//
//	"localhost"  -> localhost
//	'password123' -> password123
//	localhost     -> localhost
//
// This ensures values like jwt.secret_key are not stored with extra quotes.
func resolveScalar(s string) string {
	s = strings.TrimSpace(s)

	// if value is quoted with "..." or '...', remove quotes safely
	n := len(s)
	if n >= 2 {
		if (s[0] == '"' && s[n-1] == '"') || (s[0] == '\'' && s[n-1] == '\'') {
			if unq, err := strconv.Unquote(s); err == nil {
				return unq
			}
			// fallback if strconv.Unquote fails (e.g., mismatched quotes)
			return s[1 : n-1]
		}
	}

	return s
}
