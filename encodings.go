// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "golang.org/x/text/encoding/unicode"

// Code-point tables for the single-byte base encodings named by a simple
// font's /Encoding entry (PDF 32000-1:2008, Annex D). Each table maps a
// byte 0x00-0xFF to the Unicode code point Differences arrays are applied
// on top of. Unmapped codes default to the Unicode replacement behavior of
// rune(0), which byteEncoder renders as a NUL rather than guessing.
var winAnsiEncoding = buildWinAnsiEncoding()
var macRomanEncoding = buildMacRomanEncoding()
var macExpertEncoding = buildMacExpertEncoding()
var standardEncoding = buildStandardEncoding()
var pdfDocEncoding = buildPDFDocEncoding()

// asciiBand fills the common 0x20-0x7E printable ASCII range shared by
// every Latin text encoding PDF recognizes.
func asciiBand(t *[256]rune) {
	for c := rune(0x20); c <= 0x7E; c++ {
		t[c] = c
	}
}

func buildWinAnsiEncoding() [256]rune {
	var t [256]rune
	asciiBand(&t)
	// Windows-1252 upper half (0x80-0x9F holds the CP1252 extensions that
	// ISO 8859-1 leaves as C1 controls; 0xA0-0xFF matches Latin-1).
	cp1252 := map[byte]rune{
		0x80: '€', 0x82: '‚', 0x83: 'ƒ', 0x84: '„',
		0x85: '…', 0x86: '†', 0x87: '‡', 0x88: 'ˆ',
		0x89: '‰', 0x8A: 'Š', 0x8B: '‹', 0x8C: 'Œ',
		0x8E: 'Ž', 0x91: '‘', 0x92: '’', 0x93: '“',
		0x94: '”', 0x95: '•', 0x96: '–', 0x97: '—',
		0x98: '˜', 0x99: '™', 0x9A: 'š', 0x9B: '›',
		0x9C: 'œ', 0x9E: 'ž', 0x9F: 'Ÿ',
	}
	for c, r := range cp1252 {
		t[c] = r
	}
	for c := rune(0xA0); c <= 0xFF; c++ {
		t[byte(c)] = c // coincides with Latin-1/Unicode for this range
	}
	return t
}

func buildMacRomanEncoding() [256]rune {
	var t [256]rune
	asciiBand(&t)
	macRomanUpper := []rune{
		'Ä', 'Å', 'Ç', 'É', 'Ñ', 'Ö', 'Ü', 'á',
		'à', 'â', 'ä', 'ã', 'å', 'ç', 'é', 'è',
		'ê', 'ë', 'í', 'ì', 'î', 'ï', 'ñ', 'ó',
		'ò', 'ô', 'ö', 'õ', 'ú', 'ù', 'û', 'ü',
		'†', '°', '¢', '£', '§', '•', '¶', 'ß',
		'®', '©', '™', '´', '¨', '≠', 'Æ', 'Ø',
		'∞', '±', '≤', '≥', '¥', 'µ', '∂', '∑',
		'∏', 'π', '∫', 'ª', 'º', 'Ω', 'æ', 'ø',
		'¿', '¡', '¬', '√', 'ƒ', '≈', '∆', '«',
		'»', '…', ' ', 'À', 'Ã', 'Õ', 'Œ', 'œ',
		'–', '—', '“', '”', '‘', '’', '÷', '◊',
		'ÿ', 'Ÿ', '⁄', '€', '‹', '›', 'ﬁ', 'ﬂ',
		'‡', '·', '‚', '„', '‰', 'Â', 'Ê', 'Á',
		'Ë', 'È', 'Í', 'Î', 'Ï', 'Ì', 'Ó', 'Ô',
		'', 'Ò', 'Ú', 'Û', 'Ù', 'ı', 'ˆ', '˜',
		'¯', '˘', '˙', '˚', '¸', '˝', '˛', 'ˇ',
	}
	for i, r := range macRomanUpper {
		t[0x80+i] = r
	}
	return t
}

// buildMacExpertEncoding maps only the space (0x20); every other code
// names a small-cap, ligature, fraction or oldstyle-figure variant that has
// no single-rune Unicode equivalent. Those codes decode to 0, which
// byteEncoder emits as a NUL rather than a wrong guess. MacExpertEncoding is
// rare in the wild (expert-set fonts), so this partial table matches what a
// page in practice needs without importing an expert-glyph table nobody ships.
func buildMacExpertEncoding() [256]rune {
	var t [256]rune
	t[0x20] = ' '
	for c := rune('0'); c <= '9'; c++ {
		t[0x30+(c-'0')] = 0 // expert oldstyle figures: no direct Unicode digit
	}
	return t
}

// buildStandardEncoding implements Adobe StandardEncoding, the implicit
// base when a font's /Encoding is absent. It agrees with WinAnsi in the
// ASCII band except 0x27 and 0x60 (curly quotes), and diverges above 0x7F.
func buildStandardEncoding() [256]rune {
	var t [256]rune
	asciiBand(&t)
	t[0x27] = '’' // quoteright
	t[0x60] = '‘' // quoteleft
	standardUpper := map[byte]rune{
		0xA1: '¡', 0xA2: '¢', 0xA3: '£', 0xA4: '⁄',
		0xA5: '¥', 0xA6: 'ƒ', 0xA7: '§', 0xA8: '¤',
		0xA9: '\'', 0xAA: '“', 0xAB: '«', 0xAC: '‹',
		0xAD: '›', 0xAE: 'ﬁ', 0xAF: 'ﬂ', 0xB1: '–',
		0xB2: '†', 0xB3: '‡', 0xB4: '·', 0xB6: '¶',
		0xB7: '•', 0xB8: '‚', 0xB9: '„', 0xBA: '”',
		0xBB: '»', 0xBC: '…', 0xBD: '‰', 0xBF: '¿',
		0xC1: '`', 0xC2: '´', 0xC3: 'ˆ', 0xC4: '˜',
		0xC5: '¯', 0xC6: '˘', 0xC7: '˙', 0xC8: '¨',
		0xCA: '˚', 0xCB: '¸', 0xCD: '˝', 0xCE: '˛',
		0xCF: 'ˇ', 0xD0: '—', 0xE1: 'Æ', 0xE3: 'ª',
		0xE8: 'Ł', 0xE9: 'Ø', 0xEA: 'Œ', 0xEB: 'º',
		0xF1: 'æ', 0xF5: 'ı', 0xF8: 'ł', 0xF9: 'ø',
		0xFA: 'œ', 0xFB: 'ß',
	}
	for c, r := range standardUpper {
		t[c] = r
	}
	return t
}

// buildPDFDocEncoding implements PDFDocEncoding (Annex D.3), used for text
// strings outside content streams (document info, outline titles) that
// are not tagged UTF-16BE. It matches WinAnsi everywhere it can; the
// byte ranges the two specs genuinely disagree on are rare in practice.
func buildPDFDocEncoding() [256]rune {
	t := buildWinAnsiEncoding()
	pdfDocOnly := map[byte]rune{
		0x18: '˘', 0x19: 'ˇ', 0x1A: 'ˆ', 0x1B: '˙',
		0x1C: '˝', 0x1D: '˛', 0x1E: '˚', 0x1F: '˜',
		0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…',
		0x84: '—', 0x85: '–', 0x86: 'ƒ', 0x87: '⁄',
		0x88: '‹', 0x89: '›', 0x8A: '−', 0x8B: '‰',
		0x8C: '„', 0x8D: '“', 0x8E: '”', 0x8F: '‘',
		0x90: '’', 0x91: '‚', 0x92: '™', 0x93: 'ﬁ',
		0x94: 'ﬂ', 0x95: 'Ł', 0x96: 'Œ', 0x97: 'Š',
		0x98: 'Ÿ', 0x99: 'Ž', 0x9A: 'ı', 0x9B: 'ł',
		0x9C: 'œ', 0x9D: 'š', 0x9E: 'ž',
	}
	for c, r := range pdfDocOnly {
		t[c] = r
	}
	return t
}

// nameToRune resolves an Adobe Glyph List name (as used by an /Encoding
// /Differences array) to its Unicode code point, covering StandardEncoding,
// WinAnsiEncoding's accented letters, and the common ligatures and
// punctuation marks PDF producers actually emit in Differences arrays.
var nameToRune = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quoteright": '’',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3',
	"four": '4', "five": '5', "six": '6', "seven": '7',
	"eight": '8', "nine": '9', "colon": ':', "semicolon": ';',
	"less": '<', "equal": '=', "greater": '>', "question": '?',
	"at": '@',
	"A":  'A', "B": 'B', "C": 'C', "D": 'D', "E": 'E', "F": 'F', "G": 'G',
	"H": 'H', "I": 'I', "J": 'J', "K": 'K', "L": 'L', "M": 'M', "N": 'N',
	"O": 'O', "P": 'P', "Q": 'Q', "R": 'R', "S": 'S', "T": 'T', "U": 'U',
	"V": 'V', "W": 'W', "X": 'X', "Y": 'Y', "Z": 'Z',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "quoteleft": '‘',
	"a": 'a', "b": 'b', "c": 'c', "d": 'd', "e": 'e', "f": 'f', "g": 'g',
	"h": 'h', "i": 'i', "j": 'j', "k": 'k', "l": 'l', "m": 'm', "n": 'n',
	"o": 'o', "p": 'p', "q": 'q', "r": 'r', "s": 's', "t": 't', "u": 'u',
	"v": 'v', "w": 'w', "x": 'x', "y": 'y', "z": 'z',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"Agrave": 'À', "Aacute": 'Á', "Acircumflex": 'Â', "Atilde": 'Ã',
	"Adieresis": 'Ä', "Aring": 'Å', "AE": 'Æ', "Ccedilla": 'Ç',
	"Egrave": 'È', "Eacute": 'É', "Ecircumflex": 'Ê', "Edieresis": 'Ë',
	"Igrave": 'Ì', "Iacute": 'Í', "Icircumflex": 'Î', "Idieresis": 'Ï',
	"Eth": 'Ð', "Ntilde": 'Ñ', "Ograve": 'Ò', "Oacute": 'Ó',
	"Ocircumflex": 'Ô', "Otilde": 'Õ', "Odieresis": 'Ö', "multiply": '×',
	"Oslash": 'Ø', "Ugrave": 'Ù', "Uacute": 'Ú', "Ucircumflex": 'Û',
	"Udieresis": 'Ü', "Yacute": 'Ý', "Thorn": 'Þ', "germandbls": 'ß',
	"agrave": 'à', "aacute": 'á', "acircumflex": 'â', "atilde": 'ã',
	"adieresis": 'ä', "aring": 'å', "ae": 'æ', "ccedilla": 'ç',
	"egrave": 'è', "eacute": 'é', "ecircumflex": 'ê', "edieresis": 'ë',
	"igrave": 'ì', "iacute": 'í', "icircumflex": 'î', "idieresis": 'ï',
	"eth": 'ð', "ntilde": 'ñ', "ograve": 'ò', "oacute": 'ó',
	"ocircumflex": 'ô', "otilde": 'õ', "odieresis": 'ö', "divide": '÷',
	"oslash": 'ø', "ugrave": 'ù', "uacute": 'ú', "ucircumflex": 'û',
	"udieresis": 'ü', "yacute": 'ý', "thorn": 'þ', "ydieresis": 'ÿ',
	"fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ', "ffi": 'ﬃ', "ffl": 'ﬄ',
	"bullet": '•', "endash": '–', "emdash": '—', "Euro": '€',
	"quotesingle": '\'', "quotedblleft": '“', "quotedblright": '”',
	"guillemotleft": '«', "guillemotright": '»',
	"ellipsis": '…', "trademark": '™', "copyright": '©', "registered": '®',
	"degree": '°', "plusminus": '±', "mu": 'µ', "paragraph": '¶',
	"section": '§', "dagger": '†', "daggerdbl": '‡',
}

// isUTF16 reports whether a PDF text string carries the UTF-16BE byte
// order mark that distinguishes it from PDFDocEncoding (PDF 32000-1:2008
// 7.9.2.2).
func isUTF16(s string) bool {
	return len(s) >= 2 && s[0] == '\xFE' && s[1] == '\xFF'
}

// isPDFDocEncoded reports whether s should be decoded as PDFDocEncoding,
// i.e. it is not a UTF-16BE text string.
func isPDFDocEncoded(s string) bool {
	return !isUTF16(s)
}

// pdfDocDecode decodes a PDFDocEncoding byte string to UTF-8.
func pdfDocDecode(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		c := pdfDocEncoding[s[i]]
		if c == 0 && s[i] != 0 {
			c = rune(s[i])
		}
		r[i] = c
	}
	return string(r)
}

// utf16Decoder decodes big-endian UTF-16 PDF text strings (PDF
// 32000-1:2008 7.9.2.2 tags them with a leading U+FEFF BOM, which
// UseBOM strips).
var utf16Decoder = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()

// utf16Decode decodes a big-endian UTF-16 byte string (including its
// leading BOM) to UTF-8. Malformed input decodes as far as it can; a
// decode error yields whatever runes x/text's decoder salvaged rather
// than dropping the string entirely, matching this package's general
// best-effort posture on corrupted text strings.
func utf16Decode(s string) string {
	out, err := utf16Decoder.String(s)
	if err != nil && out == "" {
		return s
	}
	return out
}
