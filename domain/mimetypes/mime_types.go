package mimetypes

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown        MIME = "unknown"
	ApplicationPDF MIME = "application/pdf"
	OctetStream    MIME = "application/octet-stream"
)

const pdfExtension = ".pdf"

// Matches parses a declared media type (parameters allowed) and compares it
// with the expected one, case-insensitively.
func Matches(declared string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return Unknown, false
	}
	return expected, strings.EqualFold(mt, string(expected))
}

// HasPDFExtension reports whether the file name ends in ".pdf", ignoring case.
func HasPDFExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), pdfExtension)
}

// LooksLikePDF is the declared-type OR file-suffix rule. It never inspects the payload.
func LooksLikePDF(declared, name string) bool {
	if _, ok := Matches(declared, ApplicationPDF); ok {
		return true
	}
	return HasPDFExtension(name)
}

// Detect sniffs the payload magic bytes.
func Detect(payload []byte) MIME {
	detected := mimetype.Detect(payload)
	if detected == nil {
		return Unknown
	}
	mt, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return Unknown
	}
	return MIME(mt)
}

// IsPDFContent reports whether the payload starts like a PDF document.
func IsPDFContent(payload []byte) bool {
	return mimetype.Detect(payload).Is(string(ApplicationPDF))
}
