// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gocypher/bench"
	"github.com/blinklabs-io/gocypher/codec"
	"github.com/blinklabs-io/gocypher/server"
	"github.com/blinklabs-io/gocypher/transport"
	"github.com/spf13/viper"
)

const envPrefix = "GOCYPHER"

type Config struct {
	Address        string      `mapstructure:"address"`
	Codec          string      `mapstructure:"codec"`
	IOThreads      int         `mapstructure:"io-threads"`
	LogLevel       string      `mapstructure:"log-level"`
	LogFormat      string      `mapstructure:"log-format"`
	MetricsAddress string      `mapstructure:"metrics-address"`
	Bench          BenchConfig `mapstructure:"bench"`
	Serve          ServeConfig `mapstructure:"serve"`
}

type BenchConfig struct {
	Repetitions  int     `mapstructure:"repetitions"`
	BatchSize    int     `mapstructure:"batch-size"`
	Query        string  `mapstructure:"query"`
	Transactions bool    `mapstructure:"transactions"`
	NoResults    bool    `mapstructure:"no-results"`
	Workers      int     `mapstructure:"workers"`
	Rate         float64 `mapstructure:"rate"`
}

type ServeConfig struct {
	Address string `mapstructure:"address"`
	Workers int    `mapstructure:"workers"`
}

// newViper returns a viper instance with the defaults and environment binding. Keys
// map to variables such as GOCYPHER_ADDRESS and GOCYPHER_BENCH_BATCH_SIZE
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("address", "tcp://localhost:5555")
	v.SetDefault("codec", codec.NameMsgPack)
	v.SetDefault("io-threads", transport.DefaultIOThreads)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
	v.SetDefault("metrics-address", "")
	v.SetDefault("bench.repetitions", bench.DefaultRepetitions)
	v.SetDefault("bench.batch-size", bench.DefaultBatchSize)
	v.SetDefault("bench.query", bench.DefaultQuery)
	v.SetDefault("bench.transactions", false)
	v.SetDefault("bench.no-results", false)
	v.SetDefault("bench.workers", bench.DefaultWorkers)
	v.SetDefault("bench.rate", 0.0)
	v.SetDefault("serve.address", server.DefaultAddress)
	v.SetDefault("serve.workers", 1)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads the optional config file and returns the merged configuration.
// Flags bound to v take precedence over the environment, which takes precedence over
// the file
func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("address must not be empty"))
	}
	if _, err := codec.New(c.Codec); err != nil {
		errs = append(errs, err)
	}
	if c.IOThreads < 1 {
		errs = append(errs, fmt.Errorf("invalid I/O thread count: %d", c.IOThreads))
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format: %s", c.LogFormat))
	}
	return errors.Join(errs...)
}
