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

// Command conflux-node is the reference host binary: it loads a
// synchronizer configuration, subscribes to NATS subjects feeding that
// synchronizer, and optionally exposes its counters over Prometheus.
// It plays the same top-level role gollum's own main.go plays for the
// multiplexer — flag parsing, config load, wiring, signal-driven
// shutdown — scaled down to the one collaborator this engine needs.
package main

import (
	"fmt"
	"os"

	flag "github.com/docker/docker/pkg/mflag"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/trivago/conflux/core"
	"github.com/trivago/conflux/host/natssub"
	"github.com/trivago/conflux/internal/corelog"
	"github.com/trivago/conflux/internal/metricsserver"
)

const (
	confluxMajorVer = 1
	confluxMinorVer = 0
	confluxPatchVer = 0
)

func main() {
	flag.Parse()
	configureLogging(*flagLoglevel)

	if *flagVersion {
		fmt.Printf("conflux-node v%d.%d.%d\n", confluxMajorVer, confluxMinorVer, confluxPatchVer)
		return // ### return, version only ###
	}

	if *flagHelp || *flagConfigFile == "" {
		flag.Usage()
		return // ### return, nothing to do ###
	}

	topics, config, err := core.ReadConfig(*flagConfigFile)
	if err != nil {
		fmt.Printf("config: %s\n", err.Error())
		os.Exit(1)
	}

	sync, err := core.New(topics, config)
	if err != nil {
		fmt.Printf("synchronizer: %s\n", err.Error())
		os.Exit(1)
	}

	conn, err := nats.Connect(*flagNatsURL)
	if err != nil {
		fmt.Printf("nats: %s\n", err.Error())
		os.Exit(1)
	}
	defer conn.Close()

	var stopMetrics func()
	if *flagMetricsAddr != "" {
		stopMetrics = metricsserver.Start(*flagMetricsAddr)
		defer stopMetrics()
	}

	subscriber := natssub.New(conn, sync, func(group core.SyncGroup) {
		fields := logrus.Fields{"timestamp_ns": group.TimestampNs()}
		for _, topic := range group.Topics() {
			if _, ts, ok := group.Get(topic); ok {
				fields[topic+"_ts"] = ts
			}
		}
		logrus.WithFields(fields).Info("group emitted")
	})
	subscriber.QueueGroup = *flagQueueGroup

	if err := subscriber.Start(buildMappings(topics, flagSubjects)); err != nil {
		fmt.Printf("subscribe: %s\n", err.Error())
		os.Exit(1)
	}
	defer subscriber.Stop()

	logrus.WithField("topics", topics).Info("conflux-node ready")

	signalHandler := newSignalHandler()
	<-signalHandler
	logrus.Info("shutting down")
}

// buildMappings turns the repeated "-s topic=subject" flags into
// TopicSubject pairs, defaulting any topic without an explicit mapping
// to a subject of the same name.
func buildMappings(topics []string, raw mappingFlag) []natssub.TopicSubject {
	explicit := make(map[string]string, len(raw))
	for _, entry := range raw {
		for i := 0; i < len(entry); i++ {
			if entry[i] == '=' {
				explicit[entry[:i]] = entry[i+1:]
				break
			}
		}
	}

	mappings := make([]natssub.TopicSubject, len(topics))
	for i, topic := range topics {
		subject, ok := explicit[topic]
		if !ok {
			subject = topic
		}
		mappings[i] = natssub.TopicSubject{Topic: topic, Subject: subject}
	}
	return mappings
}

// configureLogging maps the CLI's 0-2 loglevel (higher means more
// messages, matching the teacher's own flag convention) onto the
// engine's internal corelog verbosity, and sends both corelog and
// logrus output to stderr.
func configureLogging(level int) {
	logrus.SetOutput(os.Stderr)
	corelog.SetWriter(os.Stderr)

	switch {
	case level <= 0:
		corelog.SetVerbosity(corelog.VerbositySilent)
		logrus.SetLevel(logrus.WarnLevel)
	case level == 1:
		corelog.SetVerbosity(corelog.VerbosityNote)
		logrus.SetLevel(logrus.InfoLevel)
	default:
		corelog.SetVerbosity(corelog.VerbosityDebug)
		logrus.SetLevel(logrus.DebugLevel)
	}
}
