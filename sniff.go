package ember

import (
	"bytes"

	"github.com/aofei/mimesniffer"
)

// magicNumber is one entry of the fixed magic-number table (§4.10).
type magicNumber struct {
	name   string
	offset int
	bytes  []byte
}

// magicNumbers is the fixed table of file-format signatures the binary
// content sniffer checks against, in the order given by §4.10.
var magicNumbers = []magicNumber{
	{"jpeg", 0, []byte{0xFF, 0xD8, 0xFF}},
	{"png", 0, []byte{0x89, 0x50, 0x4E, 0x47}},
	{"gif87a", 0, []byte("GIF87a")},
	{"gif89a", 0, []byte("GIF89a")},
	{"bmp", 0, []byte("BM")},
	{"tiff-le", 0, []byte{0x49, 0x49, 0x2A, 0x00}},
	{"tiff-be", 0, []byte{0x4D, 0x4D, 0x00, 0x2A}},
	{"pdf", 0, []byte("%PDF")},
	{"zip", 0, []byte{0x50, 0x4B, 0x03, 0x04}},
	{"zip-empty", 0, []byte{0x50, 0x4B, 0x05, 0x06}},
	{"zip-spanned", 0, []byte{0x50, 0x4B, 0x07, 0x08}},
	{"rar4", 0, []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}},
	{"rar5", 0, []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}},
	{"7z", 0, []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}},
	{"gzip", 0, []byte{0x1F, 0x8B}},
	{"mz", 0, []byte("MZ")},
	{"elf", 0, []byte{0x7F, 'E', 'L', 'F'}},
	{"msoffice", 0, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	{"flac", 0, []byte("fLaC")},
	{"ogg", 0, []byte("OggS")},
	{"id3", 0, []byte("ID3")},
	{"webm", 0, []byte{0x1A, 0x45, 0xDF, 0xA3}},
}

// matches reports whether data carries m's signature at m.offset.
func (m magicNumber) matches(data []byte) bool {
	if len(data) < m.offset+len(m.bytes) {
		return false
	}
	return bytes.Equal(data[m.offset:m.offset+len(m.bytes)], m.bytes)
}

// isBinaryContent implements §4.10: a fixed magic-number table (RIFF
// containers disambiguated into WebP/WAV/AVI by their offset-8 tag, MP3
// frame sync as a fallback to the ID3 tag, and the two MP4 ftyp
// variants), extended with a null-byte/control-byte heuristic. The
// magic-number classification is cross-checked against
// github.com/aofei/mimesniffer's own signature table so a type either
// table recognizes is treated as binary.
func isBinaryContent(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	for _, m := range magicNumbers {
		if m.matches(data) {
			return true
		}
	}

	if isRIFFVariant(data) {
		return true
	}

	if isMP4(data) {
		return true
	}

	if looksLikeMP3FrameSync(data) {
		return true
	}

	if sniffed := mimesniffer.Sniff(data); sniffed != "" &&
		sniffed != "text/plain; charset=utf-8" &&
		!bytesLookLikeText(sniffed) {
		return true
	}

	return isBinaryHeuristic(data)
}

// isRIFFVariant recognizes WebP, WAV, and AVI, which all share the RIFF
// container signature and are disambiguated by the 4-byte tag at offset
// 8 (§4.10).
func isRIFFVariant(data []byte) bool {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) {
		return false
	}

	tag := string(data[8:12])
	switch tag {
	case "WEBP", "WAVE", "AVI ":
		return true
	}

	return false
}

// isMP4 recognizes the two common MP4 "ftyp" box layouts (§4.10).
func isMP4(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return bytes.Equal(data[4:8], []byte("ftyp"))
}

// looksLikeMP3FrameSync recognizes a raw MPEG audio frame sync (11 set
// bits) when no ID3 tag is present (§4.10).
func looksLikeMP3FrameSync(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0] == 0xFF && (data[1]&0xE0) == 0xE0
}

// bytesLookLikeText reports whether a sniffed MIME type from mimesniffer
// indicates plain text, so it is not double-counted as binary.
func bytesLookLikeText(mimeType string) bool {
	for _, prefix := range []string{"text/"} {
		if len(mimeType) >= len(prefix) && mimeType[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// isBinaryHeuristic implements §4.10's fallback heuristic: more than 10%
// null bytes, or more than 30% non-printable control bytes (excluding
// tab, LF, CR), marks data as binary.
func isBinaryHeuristic(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	nullCount := 0
	controlCount := 0

	for _, b := range data {
		if b == 0x00 {
			nullCount++
		}
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			controlCount++
		}
	}

	n := len(data)
	if float64(nullCount)/float64(n) > 0.10 {
		return true
	}
	if float64(controlCount)/float64(n) > 0.30 {
		return true
	}

	return false
}
