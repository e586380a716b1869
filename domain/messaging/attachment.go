package messaging

import (
	"dm-lab/domain/mimetypes"
	"dm-lab/errors"
	"strings"
)

const (
	MaxAttachmentBytes    int64 = 10 << 20
	DefaultAttachmentName       = "attachment.pdf"
)

// Upload is a file as received from the caller, before any validation.
type Upload struct {
	Payload           []byte
	DeclaredMediaType string
	OriginalName      string
}

// PendingAttachment passed validation and waits to be stored with its message.
type PendingAttachment struct {
	Name      string
	MediaType string
	Payload   []byte
}

func (p PendingAttachment) SizeBytes() int64 {
	return int64(len(p.Payload))
}

// AttachmentPolicy decides which uploads may be attached to a new message.
// SniffContent additionally requires PDF magic bytes in the payload.
type AttachmentPolicy struct {
	MaxBytes     int64
	SniffContent bool
}

func DefaultAttachmentPolicy() AttachmentPolicy {
	return AttachmentPolicy{MaxBytes: MaxAttachmentBytes}
}

// Validate runs the checks that only need metadata, in order: empty, type, size.
// The gateway calls it before buffering the payload.
func (p AttachmentPolicy) Validate(name, declaredMediaType string, size int64) error {
	if size <= 0 {
		return errors.ErrAttachmentEmpty
	}
	if !mimetypes.LooksLikePDF(declaredMediaType, name) {
		return errors.ErrAttachmentNotPDF
	}
	if size > p.maxBytes() {
		return errors.ErrAttachmentTooLarge
	}
	return nil
}

// Accept validates the upload and normalizes it for storage: payload kept
// verbatim, media type forced to application/pdf, blank names replaced.
func (p AttachmentPolicy) Accept(u Upload) (PendingAttachment, error) {
	if err := p.Validate(u.OriginalName, u.DeclaredMediaType, int64(len(u.Payload))); err != nil {
		return PendingAttachment{}, err
	}
	if p.SniffContent && !mimetypes.IsPDFContent(u.Payload) {
		return PendingAttachment{}, errors.ErrAttachmentNotPDF
	}
	name := u.OriginalName
	if strings.TrimSpace(name) == "" {
		name = DefaultAttachmentName
	}
	return PendingAttachment{
		Name:      name,
		MediaType: string(mimetypes.ApplicationPDF),
		Payload:   u.Payload,
	}, nil
}

func (p AttachmentPolicy) maxBytes() int64 {
	if p.MaxBytes <= 0 {
		return MaxAttachmentBytes
	}
	return p.MaxBytes
}
