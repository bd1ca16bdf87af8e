package namecodec

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// codePages maps accepted names to 8-bit code pages
var codePages = map[string]*charmap.Charmap{
	"cp437":      charmap.CodePage437,
	"cp850":      charmap.CodePage850,
	"cp852":      charmap.CodePage852,
	"cp855":      charmap.CodePage855,
	"cp866":      charmap.CodePage866,
	"cp1250":     charmap.Windows1250,
	"cp1251":     charmap.Windows1251,
	"cp1252":     charmap.Windows1252,
	"koi8-r":     charmap.KOI8R,
	"koi8-u":     charmap.KOI8U,
	"iso-8859-1": charmap.ISO8859_1,
	"iso-8859-5": charmap.ISO8859_5,
}

// aliases maps alternative spellings to canonical names
var aliases = map[string]string{
	"ibm437":       "cp437",
	"ibm850":       "cp850",
	"ibm866":       "cp866",
	"windows-1250": "cp1250",
	"windows-1251": "cp1251",
	"windows-1252": "cp1252",
	"latin1":       "iso-8859-1",
	"koi8r":        "koi8-r",
	"koi8u":        "koi8-u",
	"utf8":         "utf-8",
}

// NewDecoder returns the decoder registered under name (case-insensitive)
func NewDecoder(name string) (Decoder, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}

	if key == "utf-8" {
		return UTF8Decoder{}, nil
	}
	if cm, ok := codePages[key]; ok {
		return &CharmapDecoder{name: key, charmap: cm}, nil
	}

	return nil, fmt.Errorf("unknown filename encoding %q (supported: %s)", name, strings.Join(Supported(), ", "))
}

// Supported returns the canonical names accepted by NewDecoder
func Supported() []string {
	names := []string{"utf-8"}
	for name := range codePages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CharmapDecoder decodes single-byte code pages
type CharmapDecoder struct {
	name    string
	charmap *charmap.Charmap
}

// Name returns the code page name
func (d *CharmapDecoder) Name() string {
	return d.name
}

// Decode maps every byte through the code page. Bytes with no mapping make
// the result invalid.
func (d *CharmapDecoder) Decode(raw []byte) (string, bool) {
	out, err := d.charmap.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// UTF8Decoder accepts names that are already valid UTF-8
type UTF8Decoder struct{}

// Name returns "utf-8"
func (UTF8Decoder) Name() string {
	return "utf-8"
}

// Decode validates raw as UTF-8
func (UTF8Decoder) Decode(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}
