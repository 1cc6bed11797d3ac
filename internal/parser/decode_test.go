package parser

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const sampleLog = "[2024-01-01T10:00:00Z] [VEHICLE_ID:42] [ERROR] [CODE:E100] [engine overheat]\n"

func readAllDecoded(t *testing.T, payload []byte) string {
	t.Helper()
	rc, err := NewDecodedReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("NewDecodedReader: %v", err)
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read decoded: %v", err)
	}
	return string(out)
}

func TestNewDecodedReader_Plain(t *testing.T) {
	if got := readAllDecoded(t, []byte(sampleLog)); got != sampleLog {
		t.Fatalf("got %q", got)
	}
}

func TestNewDecodedReader_Empty(t *testing.T) {
	if got := readAllDecoded(t, nil); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestNewDecodedReader_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(sampleLog)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if got := readAllDecoded(t, buf.Bytes()); got != sampleLog {
		t.Fatalf("got %q", got)
	}
}

func TestNewDecodedReader_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	payload := enc.EncodeAll([]byte(sampleLog), nil)
	_ = enc.Close()
	if got := readAllDecoded(t, payload); got != sampleLog {
		t.Fatalf("got %q", got)
	}
}

func TestNewDecodedReader_CorruptGzip(t *testing.T) {
	// valid magic, truncated header
	if _, err := NewDecodedReader(bytes.NewReader([]byte{0x1f, 0x8b, 0x08})); err == nil {
		t.Fatal("expected error for truncated gzip header")
	}
}
