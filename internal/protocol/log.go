/*
Copyright 2020 SAP SE

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

import (
	"flag"
	"fmt"
	"log"
	"os"
)

// pPrefix names the two wire-level debug flags this package registers;
// unlike the rest of the module's slog-based logging, part/message framing
// is hot enough and low-level enough that its tracing stays a flag-gated
// stdlib logger, matching the teacher's own split between structured
// application logging and raw wire tracing.
const pPrefix = "hdbcore.protocol"

var (
	debug bool
	trace bool
)

//nolint:gochecknoinits
func init() {
	flag.BoolVar(&debug, fmt.Sprintf("%s.debug", pPrefix), false, "enable protocol-layer debugging mode")
	flag.BoolVar(&trace, fmt.Sprintf("%s.trace", pPrefix), false, "enable protocol-layer wire trace")
}

// pLogger is the protocol package's fatal/debug logger, independent of the
// upstream trace logger below.
type pLogger struct {
	log *log.Logger
}

func newPLogger() *pLogger {
	return &pLogger{
		log: log.New(os.Stderr, fmt.Sprintf("%s ", pPrefix), log.Ldate|log.Ltime|log.Lshortfile),
	}
}

func (l *pLogger) Printf(format string, v ...interface{}) {
	l.log.Output(2, fmt.Sprintf(format, v...))
}

func (l *pLogger) Fatalf(format string, v ...interface{}) {
	s := fmt.Sprintf(format, v...)
	l.log.Output(2, fmt.Sprintf(format, v...))
	if debug {
		panic(s)
	}
	os.Exit(1)
}

var plog = newPLogger()

// stdout is captured in a variable rather than referenced directly so tests
// that redirect os.Stdout don't also redirect wire trace output.
var stdout = os.Stdout

const (
	upStreamPrefix   = "→"
	downStreamPrefix = "←"
)

func streamPrefix(upStream bool) string {
	if upStream {
		return upStreamPrefix
	}
	return downStreamPrefix
}

// traceLogger logs one decoded frame (init handshake, message/segment/part
// header, or part payload) when wire tracing is enabled.
type traceLogger interface {
	Log(v interface{})
}

type traceLog struct {
	prefix string
	log    *log.Logger
}

func (l *traceLog) Log(v interface{}) {
	var msg string

	switch v.(type) {
	case *initRequest, *initReply:
		msg = fmt.Sprintf("%sINI %s", l.prefix, v)
	case *messageHeader:
		msg = fmt.Sprintf("%sMSG %s", l.prefix, v)
	case *segmentHeader:
		msg = fmt.Sprintf(" SEG %s", v)
	case *partHeader:
		msg = fmt.Sprintf(" PAR %s", v)
	default:
		msg = fmt.Sprintf("     %s", v)
	}
	l.log.Output(2, msg)
}

type noTraceLog struct{}

func (l *noTraceLog) Log(v interface{}) {}

var noTrace = new(noTraceLog)

// newTraceLogger returns noTrace unless the hdbcore.protocol.trace flag is
// set, so tracing costs nothing when disabled.
func newTraceLogger(upStream bool) traceLogger {
	if !trace {
		return noTrace
	}
	return &traceLog{
		prefix: streamPrefix(upStream),
		log:    log.New(stdout, fmt.Sprintf("%s ", pPrefix), log.Ldate|log.Ltime),
	}
}
