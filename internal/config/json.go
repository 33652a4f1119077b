// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// human-readable durations ("15m", "1h").
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey       string   `json:"token_sign_key"`
		TokenIssuer        string   `json:"token_issuer"`
		TokenDuration      Duration `json:"token_duration"`
		BcryptCost         int      `json:"bcrypt_cost"`
		PasswordChangeSkew Duration `json:"password_change_skew"`
		Version            string   `json:"version"`
	} `json:"app,omitempty"`

	Security struct {
		LockoutThreshold     int      `json:"lockout_threshold"`
		LockoutDuration      Duration `json:"lockout_duration"`
		ResetTokenTTL        Duration `json:"reset_token_ttl"`
		VerificationTokenTTL Duration `json:"verification_token_ttl"`
		InsecureCookies      bool     `json:"insecure_cookies"`
	} `json:"security,omitempty"`

	RateLimit struct {
		Backend             string   `json:"backend"`
		RedisAddress        string   `json:"redis_address"`
		RedisPassword       string   `json:"redis_password"`
		RedisDB             int      `json:"redis_db"`
		LoginLimit          int      `json:"login_limit"`
		LoginWindow         Duration `json:"login_window"`
		SignupLimit         int      `json:"signup_limit"`
		SignupWindow        Duration `json:"signup_window"`
		PasswordResetLimit  int      `json:"password_reset_limit"`
		PasswordResetWindow Duration `json:"password_reset_window"`
	} `json:"rate_limit,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
		TrustedProxies []string `json:"trusted_proxies"`
	} `json:"server,omitempty"`

	Adapter struct {
		MailServiceURL string   `json:"mail_service_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		HashPoolSize           int      `json:"hash_pool_size"`
		MailWorkers            int      `json:"mail_workers"`
		MailQueueSize          int      `json:"mail_queue_size"`
		TokenSweepInterval     Duration `json:"token_sweep_interval"`
		RateLimitPurgeInterval Duration `json:"rate_limit_purge_interval"`
		HealthProbeInterval    Duration `json:"health_probe_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:       jsonCfg.App.TokenSignKey,
			TokenIssuer:        jsonCfg.App.TokenIssuer,
			TokenDuration:      time.Duration(jsonCfg.App.TokenDuration),
			BcryptCost:         jsonCfg.App.BcryptCost,
			PasswordChangeSkew: time.Duration(jsonCfg.App.PasswordChangeSkew),
			Version:            jsonCfg.App.Version,
		},
		Security: Security{
			LockoutThreshold:     jsonCfg.Security.LockoutThreshold,
			LockoutDuration:      time.Duration(jsonCfg.Security.LockoutDuration),
			ResetTokenTTL:        time.Duration(jsonCfg.Security.ResetTokenTTL),
			VerificationTokenTTL: time.Duration(jsonCfg.Security.VerificationTokenTTL),
			InsecureCookies:      jsonCfg.Security.InsecureCookies,
		},
		RateLimit: RateLimit{
			Backend:             jsonCfg.RateLimit.Backend,
			RedisAddress:        jsonCfg.RateLimit.RedisAddress,
			RedisPassword:       jsonCfg.RateLimit.RedisPassword,
			RedisDB:             jsonCfg.RateLimit.RedisDB,
			LoginLimit:          jsonCfg.RateLimit.LoginLimit,
			LoginWindow:         time.Duration(jsonCfg.RateLimit.LoginWindow),
			SignupLimit:         jsonCfg.RateLimit.SignupLimit,
			SignupWindow:        time.Duration(jsonCfg.RateLimit.SignupWindow),
			PasswordResetLimit:  jsonCfg.RateLimit.PasswordResetLimit,
			PasswordResetWindow: time.Duration(jsonCfg.RateLimit.PasswordResetWindow),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			GRPCAddress:    jsonCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
			TrustedProxies: jsonCfg.Server.TrustedProxies,
		},
		Adapter: Adapter{
			MailServiceURL: jsonCfg.Adapter.MailServiceURL,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			HashPoolSize:           jsonCfg.Workers.HashPoolSize,
			MailWorkers:            jsonCfg.Workers.MailWorkers,
			MailQueueSize:          jsonCfg.Workers.MailQueueSize,
			TokenSweepInterval:     time.Duration(jsonCfg.Workers.TokenSweepInterval),
			RateLimitPurgeInterval: time.Duration(jsonCfg.Workers.RateLimitPurgeInterval),
			HealthProbeInterval:    time.Duration(jsonCfg.Workers.HealthProbeInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as raw nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
