// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/lz4"
)

// compressionStats accumulates the raw compressed/uncompressed byte and
// message counters messageWriter and messageReader each maintain; Session
// combines both sides into the Statistics snapshot spec §5 describes.
type compressionStats struct {
	reqCount            int64
	reqCompressedSize   int64
	reqUncompressedSize int64
	repCount            int64
	repCompressedSize   int64
	repUncompressedSize int64
}

// CompressionStats exposes one side (request or reply) of compressionStats
// to callers outside this package.
type CompressionStats struct {
	Count            int64
	CompressedSize   int64
	UncompressedSize int64
}

func (s compressionStats) req() CompressionStats {
	return CompressionStats{Count: s.reqCount, CompressedSize: s.reqCompressedSize, UncompressedSize: s.reqUncompressedSize}
}

func (s compressionStats) rep() CompressionStats {
	return CompressionStats{Count: s.repCount, CompressedSize: s.repCompressedSize, UncompressedSize: s.repUncompressedSize}
}

// compressPayload lz4-compresses p in its entirety, returning the framed
// compressed bytes.
func compressPayload(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(p); err != nil {
		return nil, fmt.Errorf("protocol: lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("protocol: lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

// decompressPayload inverts compressPayload, given the uncompressed size the
// message header recorded alongside the compressed one.
func decompressPayload(p []byte, uncompressedSize int) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(p))
	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("protocol: lz4 decompress: %w", err)
	}
	return out, nil
}
