// Copyright 2015-2017 trivago GmbH
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

package core

import (
	"fmt"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/trivago/tgo"
)

const (
	metricPushAccepted = "Sync:Push:Accepted"
	metricPushRejected = "Sync:Push:Rejected"
	metricAdvances     = "Sync:Advances"
	metricEmissions    = "Sync:Emissions"

	// MetricEmissionsAvg is the key used for the rolling emissions/sec
	// rate, exposed for dashboards built on top of tgo.Metric.
	MetricEmissionsAvg = "Sync:Emissions:AvgPerSec"

	metricTopicAccepted = "Sync:Topic:%s:Accepted"
	metricTopicRejected = "Sync:Topic:%s:Rejected"
	metricTopicAdvanced = "Sync:Topic:%s:Advanced"
)

// MetricsRegistry is the rcrowley/go-metrics registry backing every
// counter below. internal/metricsserver bridges this registry to
// Prometheus through github.com/CrowdStrike/go-metrics-prometheus,
// exactly as the host binary's metrics exporter does for the rest of
// this library's counters.
var MetricsRegistry = gometrics.NewRegistry()

func init() {
	tgo.EnableGlobalMetrics()
	tgo.Metric.New(metricPushAccepted)
	tgo.Metric.New(metricPushRejected)
	tgo.Metric.New(metricAdvances)
	tgo.Metric.New(metricEmissions)
	tgo.Metric.NewRate(metricEmissions, MetricEmissionsAvg, time.Second, 10, 3, true)
}

// topicMetric tracks per-topic counters, mirroring the engine-wide
// counters above but scoped to a single stream.
type topicMetric struct {
	topic string
}

func newTopicMetric(topic string) topicMetric {
	m := topicMetric{topic: topic}
	tgo.Metric.New(m.key(metricTopicAccepted))
	tgo.Metric.New(m.key(metricTopicRejected))
	tgo.Metric.New(m.key(metricTopicAdvanced))

	gometrics.GetOrRegisterCounter(m.key(metricTopicAccepted), MetricsRegistry)
	gometrics.GetOrRegisterCounter(m.key(metricTopicRejected), MetricsRegistry)
	gometrics.GetOrRegisterCounter(m.key(metricTopicAdvanced), MetricsRegistry)
	return m
}

func (m topicMetric) key(format string) string {
	return fmt.Sprintf(format, m.topic)
}

func (m topicMetric) countAccepted() {
	tgo.Metric.Inc(metricPushAccepted)
	tgo.Metric.Inc(m.key(metricTopicAccepted))
	gometrics.GetOrRegisterCounter(metricPushAccepted, MetricsRegistry).Inc(1)
	gometrics.GetOrRegisterCounter(m.key(metricTopicAccepted), MetricsRegistry).Inc(1)
}

func (m topicMetric) countRejected() {
	tgo.Metric.Inc(metricPushRejected)
	tgo.Metric.Inc(m.key(metricTopicRejected))
	gometrics.GetOrRegisterCounter(metricPushRejected, MetricsRegistry).Inc(1)
	gometrics.GetOrRegisterCounter(m.key(metricTopicRejected), MetricsRegistry).Inc(1)
}

func (m topicMetric) countAdvanced() {
	tgo.Metric.Inc(metricAdvances)
	tgo.Metric.Inc(m.key(metricTopicAdvanced))
	gometrics.GetOrRegisterCounter(metricAdvances, MetricsRegistry).Inc(1)
	gometrics.GetOrRegisterCounter(m.key(metricTopicAdvanced), MetricsRegistry).Inc(1)
}

func countEmission() {
	tgo.Metric.Inc(metricEmissions)
	gometrics.GetOrRegisterCounter(metricEmissions, MetricsRegistry).Inc(1)
}
