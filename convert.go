package charsetdemo

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is one of the two byte encodings the demo knows about.
type Encoding int

const (
	UTF8 Encoding = iota
	ShiftJIS
)

func (e Encoding) String() string {
	switch e {
	case ShiftJIS:
		return "Shift_JIS"
	default:
		return "UTF-8"
	}
}

// ParseEncoding maps a charset label to an Encoding. CP932 and its aliases
// are treated as Shift_JIS, same as x/text does.
func ParseEncoding(label string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8":
		return UTF8, nil
	case "shift_jis", "shift-jis", "sjis", "cp932", "windows-31j", "ms_kanji", "x-sjis":
		return ShiftJIS, nil
	}
	return UTF8, ErrUnknownEncoding
}

func (e Encoding) codec() encoding.Encoding {
	if e == ShiftJIS {
		return japanese.ShiftJIS
	}
	return unicode.UTF8
}

// Decode converts b from enc to a UTF-8 string. Unlike the x/text decoders
// it never substitutes U+FFFD: the first malformed sequence is reported as
// a *DecodeError carrying its byte offset.
func Decode(b []byte, enc Encoding) (string, error) {
	if enc == UTF8 {
		if utf8.Valid(b) {
			return string(b), nil
		}
		return "", &DecodeError{Op: "decode", Encoding: enc.String(), Offset: invalidUTF8(b)}
	}

	ret, err := enc.codec().NewDecoder().Bytes(b)
	if err != nil {
		return "", &DecodeError{Op: "decode", Encoding: enc.String(), Offset: -1, Err: err}
	}
	// no Shift_JIS sequence maps to U+FFFD, so seeing one means bad input
	if strings.ContainsRune(string(ret), utf8.RuneError) {
		return "", &DecodeError{Op: "decode", Encoding: enc.String(), Offset: invalidSJIS(b)}
	}
	return string(ret), nil
}

// Encode converts s to enc. Runes enc has no mapping for fail with a
// *DecodeError whose Op is "encode".
func Encode(s string, enc Encoding) ([]byte, error) {
	if enc == UTF8 {
		if !utf8.ValidString(s) {
			return nil, &DecodeError{Op: "encode", Encoding: enc.String(), Offset: invalidUTF8([]byte(s))}
		}
		return []byte(s), nil
	}
	ret, err := enc.codec().NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &DecodeError{Op: "encode", Encoding: enc.String(), Offset: unencodable(s, enc), Err: err}
	}
	return ret, nil
}

// NewEncodeWriter streams UTF-8 written to it into w as enc. Runes enc
// cannot represent are written as HTML numeric character references, so
// this is only fit for HTML output.
func NewEncodeWriter(w io.Writer, enc Encoding) io.WriteCloser {
	if enc == UTF8 {
		return nopWriteCloser{w}
	}
	return transform.NewWriter(w, encoding.HTMLEscapeUnsupported(enc.codec().NewEncoder()))
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// invalidSJIS walks b one character at a time and returns the offset of the
// first one that does not decode.
func invalidSJIS(b []byte) int {
	dec := japanese.ShiftJIS.NewDecoder()
	for i := 0; i < len(b); {
		c := b[i]
		n := 1
		if (0x81 <= c && c < 0xa0) || (0xe0 <= c && c < 0xfd) {
			n = 2
		}
		if i+n > len(b) {
			return i
		}
		dec.Reset()
		r, err := dec.Bytes(b[i : i+n])
		if err != nil || strings.ContainsRune(string(r), utf8.RuneError) {
			return i
		}
		i += n
	}
	return -1
}

func unencodable(s string, enc Encoding) int {
	e := enc.codec().NewEncoder()
	for i, r := range s {
		e.Reset()
		if _, err := e.String(string(r)); err != nil {
			return i
		}
	}
	return -1
}
