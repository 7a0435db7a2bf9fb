package tally

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}

	// Tally writes blank placeholders as &#4; which XML 1.0 forbids
	charRef = regexp.MustCompile(`&#(x[0-9a-fA-F]+|[0-9]+);`)

	xmlDecl = regexp.MustCompile(`^\s*<\?xml\s[^>]*?encoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)
)

const prologWindow = 256

// ToUTF8 transcodes a response body to UTF-8. Tally answers in UTF-16
// when its export encoding is set to Unicode; the BOM tells which. Without
// a BOM the charset named in the XML declaration applies.
func ToUTF8(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, utf8BOM):
		return raw[len(utf8BOM):], nil
	case bytes.HasPrefix(raw, utf16LEBOM), bytes.HasPrefix(raw, utf16BEBOM):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return nil, fmt.Errorf("transcode utf-16 response: %w", err)
		}
		return out, nil
	}

	label := declaredCharset(raw)
	if label == "" || isUnicodeLabel(label) {
		return raw, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("transcode %s response: %w", label, err)
	}
	return out, nil
}

// declaredCharset reads the encoding pseudo-attribute of the XML declaration
func declaredCharset(raw []byte) string {
	if len(raw) > prologWindow {
		raw = raw[:prologWindow]
	}
	m := xmlDecl.FindSubmatch(raw)
	if m == nil {
		return ""
	}
	return string(m[1])
}

func isUnicodeLabel(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "utf-16", "utf-16le", "utf-16be", "unicode":
		return true
	}
	return false
}

// Sanitize drops characters XML 1.0 does not allow, both raw control bytes
// and numeric references to them.
func Sanitize(raw []byte) []byte {
	cleaned := charRef.ReplaceAllFunc(raw, func(ref []byte) []byte {
		body := string(ref[2 : len(ref)-1])
		base := 10
		if strings.HasPrefix(body, "x") {
			body, base = body[1:], 16
		}
		n, err := strconv.ParseUint(body, base, 32)
		if err != nil || !isXMLChar(rune(n)) {
			return nil
		}
		return ref
	})

	// bytes below 0x20 never occur inside a multi-byte UTF-8 sequence
	out := make([]byte, 0, len(cleaned))
	for _, b := range cleaned {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			continue
		}
		out = append(out, b)
	}
	return out
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// charsetReader serves xml.Decoder.CharsetReader. ToUTF8 has already
// applied the declared charset, so the decoder reads UTF-8 whatever the
// declaration says.
func charsetReader(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
