package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding an input was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
)

// sniffSize is how much of the input is inspected before decoding starts.
const sniffSize = 4096

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// Decoded is an input converted to UTF-8.
type Decoded struct {
	io.Reader
	Charset Charset
	// BOM is set when the charset came from a byte order mark.
	BOM bool
}

// Detect works out how a household spreadsheet export is encoded and returns
// a UTF-8 reader over it. Input chardet cannot place is read as windows-1252.
func Detect(r io.Reader) (*Decoded, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(buf, b.prefix) {
			continue
		}

		_, _ = br.Discard(len(b.prefix))

		return decode(br, b.charset, true), nil
	}

	// A full peek may end inside a multi-byte rune.
	if err == nil {
		buf = trimPartialRune(buf)
	}

	if utf8.Valid(buf) {
		return decode(br, UTF8, false), nil
	}

	return decode(br, guess(buf), false), nil
}

func trimPartialRune(buf []byte) []byte {
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if utf8.RuneStart(buf[i]) {
			if !utf8.FullRune(buf[i:]) {
				return buf[:i]
			}

			break
		}
	}

	return buf
}

// guess maps chardet's answer onto the charsets household exports use.
func guess(buf []byte) Charset {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err != nil {
		return Windows1252
	}

	switch result.Charset {
	case "UTF-8":
		return UTF8
	case "UTF-16LE":
		return UTF16LE
	case "UTF-16BE":
		return UTF16BE
	default:
		return Windows1252
	}
}

func decode(r io.Reader, cs Charset, bom bool) *Decoded {
	var enc xencoding.Encoding

	switch cs {
	case UTF16LE:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF16BE:
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case Windows1252:
		enc = charmap.Windows1252
	}

	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	return &Decoded{Reader: r, Charset: cs, BOM: bom}
}
