package tableio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/amp-labs/amp-tablecheck/closer"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names a stream codec.
type Compression string

const (
	CompressionNone   Compression = ""
	CompressionGzip   Compression = "gzip"
	CompressionZstd   Compression = "zstd"
	CompressionBrotli Compression = "br"
	CompressionLZ4    Compression = "lz4"
)

var compressionExts = map[string]Compression{ //nolint:gochecknoglobals
	".gz":   CompressionGzip,
	".gzip": CompressionGzip,
	".zst":  CompressionZstd,
	".zstd": CompressionZstd,
	".br":   CompressionBrotli,
	".lz4":  CompressionLZ4,
}

// Brotli has no magic number, so it is only ever recognized by extension.
var compressionMagic = []struct { //nolint:gochecknoglobals
	codec  Compression
	prefix []byte
}{
	{CompressionGzip, []byte{0x1f, 0x8b}},
	{CompressionZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{CompressionLZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

const magicLen = 4

// DetectCompression picks the codec for a stream. A known file extension
// wins; otherwise the leading bytes are matched against the gzip, zstd and
// lz4 frame magic numbers.
func DetectCompression(name string, head []byte) Compression {
	if codec, ok := compressionExts[strings.ToLower(filepath.Ext(name))]; ok {
		return codec
	}

	for _, m := range compressionMagic {
		if bytes.HasPrefix(head, m.prefix) {
			return m.codec
		}
	}

	return CompressionNone
}

// StripCompressionExt removes a trailing compression extension, so that
// "data.csv.gz" yields "data.csv".
func StripCompressionExt(name string) string {
	ext := filepath.Ext(name)
	if _, ok := compressionExts[strings.ToLower(ext)]; ok {
		return strings.TrimSuffix(name, ext)
	}

	return name
}

// Decompress wraps r in the decoder that DetectCompression selects for it.
// Uncompressed input passes through. Closing the result closes the decoder
// first and then r, when r is an io.Closer.
func Decompress(r io.Reader, name string) (io.ReadCloser, error) {
	buffered := bufio.NewReader(r)

	// A short or empty stream is not an error here, it just cannot match.
	head, _ := buffered.Peek(magicLen)

	cl := closer.NewCloser()

	var decoded io.Reader

	switch codec := DetectCompression(name, head); codec {
	case CompressionGzip:
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}

		decoded = gz
		cl.Add(gz)
	case CompressionZstd:
		dec, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}

		rc := dec.IOReadCloser()
		decoded = rc
		cl.Add(rc)
	case CompressionBrotli:
		decoded = brotli.NewReader(buffered)
	case CompressionLZ4:
		decoded = lz4.NewReader(buffered)
	case CompressionNone:
		decoded = buffered
	}

	if c, ok := r.(io.Closer); ok {
		cl.Add(c)
	}

	return closer.ForReader(decoded, cl), nil
}
