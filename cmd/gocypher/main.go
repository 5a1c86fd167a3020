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
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/blinklabs-io/gocypher/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd holds the state shared by every subcommand
type rootCmd struct {
	*cobra.Command
	v          *viper.Viper
	configFile string
	cfg        *Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	metrics    *metricsServer

	clientMetrics     *metrics.ClientMetrics
	clientMetricsOnce sync.Once
}

func newRootCmd() *rootCmd {
	rc := &rootCmd{
		v: newViper(),
	}
	c := &cobra.Command{
		Use:           "gocypher",
		Short:         "Cypher query client, benchmark, and reference server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.PersistentPreRunE = rc.setup
	c.PersistentPostRun = rc.teardown
	flags := c.PersistentFlags()
	flags.StringVar(&rc.configFile, "config", "", "config file (YAML, TOML, or JSON)")
	flags.String("address", "tcp://localhost:5555", "query server endpoint")
	flags.String("codec", "msgpack", "payload codec (msgpack or cbor)")
	flags.Int("io-threads", 1, "transport I/O threads")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("metrics-address", "", "serve Prometheus metrics on this address, such as :9090")
	for _, name := range []string{"address", "codec", "io-threads", "log-level", "log-format", "metrics-address"} {
		_ = rc.v.BindPFlag(name, flags.Lookup(name))
	}
	rc.Command = c
	rc.AddCommand(
		newBenchCmd(rc),
		newQueryCmd(rc),
		newServeCmd(rc),
		newVersionCmd(),
	)
	return rc
}

// setup loads the configuration and builds the logger before any subcommand runs
func (rc *rootCmd) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(rc.v, rc.configFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	rc.cfg = cfg
	rc.logger = logger
	rc.registry = newRegistry()
	if cfg.MetricsAddress != "" {
		rc.metrics = startMetricsServer(cfg.MetricsAddress, rc.registry, logger)
	}
	return nil
}

func (rc *rootCmd) teardown(*cobra.Command, []string) {
	if rc.metrics != nil {
		rc.metrics.Stop()
		rc.metrics = nil
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
