// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"sync"
	"time"

	"github.com/sqldbc/hdbcore/internal/protocol"
)

// Statistics is a point-in-time snapshot of connection-level counters
// (spec §3's Statistics record). It is a plain value, safe to read after
// Snapshot returns without further synchronization.
type Statistics struct {
	SequenceNumber int32
	ResetBase      int32

	CompressedReqCount            int64
	CompressedReqCompressedSize   int64
	CompressedReqUncompressedSize int64

	CompressedRepCount            int64
	CompressedRepCompressedSize   int64
	CompressedRepUncompressedSize int64

	ShrinkedOversizedBufferCount int64

	CreatedAt   time.Time
	LastResetAt time.Time
	WaitTime    time.Duration
}

// statsTracker accumulates Statistics fields that the wire layer does not
// already track (compressionStats covers the compressed_* counters), guarded
// by its own mutex so Snapshot never contends with the connection's main
// request lock.
type statsTracker struct {
	mu sync.Mutex

	sess *protocol.Session

	sequenceNumber int32
	resetBase      int32

	shrinkedOversizedBufferCount int64

	createdAt   time.Time
	lastResetAt time.Time
	waitTime    time.Duration
}

func newStatsTracker(sess *protocol.Session, now time.Time) *statsTracker {
	return &statsTracker{sess: sess, createdAt: now, lastResetAt: now}
}

func (t *statsTracker) nextSeqNo() int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sequenceNumber++
	return t.sequenceNumber
}

func (t *statsTracker) addWait(d time.Duration) {
	t.mu.Lock()
	t.waitTime += d
	t.mu.Unlock()
}

func (t *statsTracker) addShrinkedOversizedBuffer() {
	t.mu.Lock()
	t.shrinkedOversizedBufferCount++
	t.mu.Unlock()
}

// Snapshot returns the current Statistics, merging the locally tracked
// counters with the wire-layer compression counters from protocol.Session.
func (t *statsTracker) Snapshot() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	var req, rep protocol.CompressionStats
	if t.sess != nil {
		req, rep = t.sess.Stats()
	}

	return Statistics{
		SequenceNumber:                t.sequenceNumber,
		ResetBase:                     t.resetBase,
		CompressedReqCount:            req.Count,
		CompressedReqCompressedSize:   req.CompressedSize,
		CompressedReqUncompressedSize: req.UncompressedSize,
		CompressedRepCount:            rep.Count,
		CompressedRepCompressedSize:   rep.CompressedSize,
		CompressedRepUncompressedSize: rep.UncompressedSize,
		ShrinkedOversizedBufferCount:  t.shrinkedOversizedBufferCount,
		CreatedAt:                     t.createdAt,
		LastResetAt:                   t.lastResetAt,
		WaitTime:                      t.waitTime,
	}
}

// Reset zeroes the accumulating counters and records resetBase/lastResetAt,
// per spec §3's reset semantics (sequence_number itself is not reset).
func (t *statsTracker) Reset(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetBase = t.sequenceNumber
	t.shrinkedOversizedBufferCount = 0
	t.waitTime = 0
	t.lastResetAt = now
	if t.sess != nil {
		t.sess.ResetStats()
	}
}
