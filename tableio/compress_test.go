package tableio

import (
	"bytes"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = "id,name\n1,alice\n2,bob\n"

func compress(t *testing.T, codec Compression, data string) []byte {
	t.Helper()

	var (
		buf bytes.Buffer
		w   io.WriteCloser
		err error
	)

	switch codec {
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionZstd:
		w, err = zstd.NewWriter(&buf)
		require.NoError(t, err)
	case CompressionBrotli:
		w = brotli.NewWriter(&buf)
	case CompressionLZ4:
		w = lz4.NewWriter(&buf)
	case CompressionNone:
		return []byte(data)
	}

	_, err = io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func TestDetectCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		head []byte
		want Compression
	}{
		{"gzip extension", "a.csv.gz", nil, CompressionGzip},
		{"zstd extension", "a.csv.ZST", nil, CompressionZstd},
		{"brotli extension", "a.csv.br", nil, CompressionBrotli},
		{"lz4 extension", "a.csv.lz4", nil, CompressionLZ4},
		{"gzip magic", "", []byte{0x1f, 0x8b, 0x08, 0x00}, CompressionGzip},
		{"zstd magic", "a.csv", []byte{0x28, 0xb5, 0x2f, 0xfd}, CompressionZstd},
		{"lz4 magic", "", []byte{0x04, 0x22, 0x4d, 0x18}, CompressionLZ4},
		{"plain", "a.csv", []byte("id,n"), CompressionNone},
		{"short", "", []byte{0x1f}, CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, DetectCompression(tt.file, tt.head))
		})
	}
}

func TestStripCompressionExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "data.csv", StripCompressionExt("data.csv.gz"))
	assert.Equal(t, "data.csv", StripCompressionExt("data.csv.Zst"))
	assert.Equal(t, "data.csv", StripCompressionExt("data.csv"))
	assert.Equal(t, "data", StripCompressionExt("data"))
}

func TestDecompress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		codec Compression
		name  string
	}{
		{CompressionNone, "data.csv"},
		{CompressionNone, ""},
		{CompressionGzip, ""},
		{CompressionGzip, "data.csv.gz"},
		{CompressionZstd, ""},
		{CompressionLZ4, ""},
		{CompressionBrotli, "data.csv.br"},
	}

	for _, tt := range tests {
		t.Run(string(tt.codec)+"/"+tt.name, func(t *testing.T) {
			t.Parallel()

			rc, err := Decompress(bytes.NewReader(compress(t, tt.codec, payload)), tt.name)
			require.NoError(t, err)

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, payload, string(got))
		})
	}
}

type trackingReader struct {
	io.Reader

	closed int
}

func (r *trackingReader) Close() error {
	r.closed++

	return nil
}

func TestDecompressClosesSource(t *testing.T) {
	t.Parallel()

	src := &trackingReader{Reader: bytes.NewReader(compress(t, CompressionGzip, payload))}

	rc, err := Decompress(src, "")
	require.NoError(t, err)

	_, err = io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.NoError(t, rc.Close())
	assert.Equal(t, 1, src.closed)
}

func TestDecompressCorruptGzip(t *testing.T) {
	t.Parallel()

	_, err := Decompress(bytes.NewReader([]byte{0x1f, 0x8b, 0x00}), "")
	require.Error(t, err)
}
