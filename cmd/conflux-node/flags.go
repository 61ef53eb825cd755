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

package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/docker/docker/pkg/mflag"
)

var (
	flagHelp        = flag.Bool([]string{"h", "-help"}, false, "Print this help message.")
	flagVersion     = flag.Bool([]string{"v", "-version"}, false, "Print version information and quit.")
	flagLoglevel    = flag.Int([]string{"ll", "-loglevel"}, 0, "Set the loglevel [0-2]. Higher levels produce more messages.")
	flagConfigFile  = flag.String([]string{"c", "-config"}, "", "Use a given synchronizer configuration file (topics, window, buffer size, drop policy).")
	flagNatsURL     = flag.String([]string{"u", "-nats-url"}, "nats://127.0.0.1:4222", "NATS server URL to subscribe against.")
	flagQueueGroup  = flag.String([]string{"q", "-queue-group"}, "", "NATS queue group name. Leave empty for fan-out delivery to every node.")
	flagMetricsAddr = flag.String([]string{"m", "-metrics"}, "", "Address to serve Prometheus metrics on, e.g. :9090. Leave empty to disable.")
	flagSubjects    mappingFlag
)

func init() {
	flag.Var(&flagSubjects, []string{"s", "-subject"}, "Map a topic to a NATS subject as topic=subject. Repeatable; defaults to one subject per topic sharing its name.")
	flag.Usage = func() {
		fmt.Println("Usage: conflux-node [OPTIONS]\n\nconflux-node - multi-stream message synchronizer NATS host.\n\nOptions:")
		flag.CommandLine.SetOutput(os.Stdout)
		flag.PrintDefaults()
		fmt.Print("\n")
	}
}

// mappingFlag accumulates repeated "-s topic=subject" flags, mirroring
// the docker CLI's own repeatable flag.Value idiom (e.g. -p/-v).
type mappingFlag []string

func (m *mappingFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *mappingFlag) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected topic=subject, got %q", value)
	}
	*m = append(*m, value)
	return nil
}
