package tableio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	tcerrors "github.com/amp-labs/amp-tablecheck/errors"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffLen bounds how much of the input is inspected to guess its encoding.
const sniffLen = 64 * 1024

const charsetUTF8 = "utf-8"

//nolint:gochecknoglobals
var boms = [][]byte{
	{0xef, 0xbb, 0xbf},
	{0xff, 0xfe},
	{0xfe, 0xff},
}

// UTF8Reader returns r transcoded to UTF-8, along with the name of the
// source encoding.
//
// With a non-empty label the label decides. Otherwise a byte order mark
// decides (and is stripped), then input that already is valid UTF-8 passes
// through, and anything else is handed to chardet. When detection fails the
// input is read as UTF-8.
func UTF8Reader(r io.Reader, label string) (io.Reader, string, error) {
	buffered := bufio.NewReaderSize(r, sniffLen)

	if label != "" {
		decoded, err := charset.NewReaderLabel(label, buffered)
		if err != nil {
			return nil, "", fmt.Errorf("%w: charset %q: %w", tcerrors.ErrUnsupportedFormat, label, err)
		}

		return decoded, label, nil
	}

	head, err := buffered.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("failed to read input: %w", err)
	}

	for _, bom := range boms {
		if bytes.HasPrefix(head, bom) {
			return transform.NewReader(buffered, unicode.BOMOverride(unicode.UTF8.NewDecoder())), "bom", nil
		}
	}

	if looksUTF8(head, len(head) == sniffLen) {
		return buffered, charsetUTF8, nil
	}

	best, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil {
		return buffered, charsetUTF8, nil //nolint:nilerr
	}

	decoded, err := charset.NewReaderLabel(best.Charset, buffered)
	if err != nil {
		return buffered, charsetUTF8, nil //nolint:nilerr
	}

	return decoded, best.Charset, nil
}

// looksUTF8 reports whether head is valid UTF-8. When head was cut off at
// the sniff limit, an incomplete final rune is tolerated.
func looksUTF8(head []byte, truncated bool) bool {
	if utf8.Valid(head) {
		return true
	}

	if !truncated {
		return false
	}

	for cut := 1; cut < utf8.UTFMax && cut <= len(head); cut++ {
		tail := head[len(head)-cut:]
		if utf8.RuneStart(tail[0]) {
			return !utf8.FullRune(tail) && utf8.Valid(head[:len(head)-cut])
		}
	}

	return false
}
