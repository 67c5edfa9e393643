package store

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
)

// compressPayload deflates a message's raw JSON before it is written to
// the messages.payload column. Transcript payloads are highly repetitive
// JSON and compress well; flate is used rather than gzip since the
// per-row checksum/length framing gzip adds is redundant inside a
// database column.
func compressPayload(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("new flate writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flush payload: %w", err)
	}
	return buf.Bytes(), nil
}

// decompressPayload reverses compressPayload.
func decompressPayload(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return out, nil
}
