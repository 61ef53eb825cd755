// Copyright 2015-2018 trivago N.V.
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

// Package metricsserver exposes the engine's counters (core.MetricsRegistry)
// over HTTP as Prometheus metrics. It is the statistics/telemetry
// external collaborator: optional, started by cmd/conflux-node, and
// never touched by core.Synchronizer itself.
package metricsserver

import (
	"context"
	"net/http"
	"time"

	promMetrics "github.com/CrowdStrike/go-metrics-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/trivago/conflux/core"
)

// Start launches an HTTP server at address serving /prometheus, sourced
// from core.MetricsRegistry via the CrowdStrike go-metrics-prometheus
// bridge with a 3-second flush interval. It returns a stop function the
// caller should invoke during shutdown.
func Start(address string) func() {
	srv := &http.Server{Addr: address}
	quit := make(chan struct{})
	registry := prometheus.NewRegistry()

	flushInterval := 3 * time.Second
	provider := promMetrics.NewPrometheusProvider(core.MetricsRegistry, "conflux", "", registry, flushInterval)

	go func() {
		for {
			select {
			case <-time.After(flushInterval):
				if err := provider.UpdatePrometheusMetricsOnce(); err != nil {
					logrus.WithError(err).Warn("error updating metrics")
				}
			case <-quit:
				return
			}
		}
	}()

	go func() {
		mux := http.NewServeMux()
		opts := promhttp.HandlerOpts{
			ErrorLog:      logrus.StandardLogger(),
			ErrorHandling: promhttp.ContinueOnError,
		}
		mux.Handle("/prometheus", promhttp.HandlerFor(registry, opts))
		srv.Handler = mux

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("failed to start metrics http server")
		}
	}()

	logrus.WithField("address", address).Info("started metric service")

	return func() {
		close(quit)
		if err := srv.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("failed to shutdown metrics http server")
		}
	}
}
