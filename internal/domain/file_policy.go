package domain

import (
	"mime"
	"strings"
)

// DefaultAllowedContentTypes is the upload allow-list used when none is configured.
var DefaultAllowedContentTypes = []string{
	"image/png",
	"image/jpeg",
	"application/pdf",
	"application/zip",
	"application/x-zip-compressed",
}

// FilePolicy decides which declared content types may be submitted.
// The intake pre-check and the file relay share one value so both sides agree.
type FilePolicy struct {
	allowed map[string]struct{}
	order   []string
}

// NewFilePolicy builds a policy from the given media types, falling back to the defaults when empty.
func NewFilePolicy(contentTypes []string) FilePolicy {
	policy := FilePolicy{allowed: make(map[string]struct{})}
	add := func(ct string) {
		normalized := NormalizeContentType(ct)
		if normalized == "" {
			return
		}
		if _, ok := policy.allowed[normalized]; ok {
			return
		}
		policy.allowed[normalized] = struct{}{}
		policy.order = append(policy.order, normalized)
	}
	for _, ct := range contentTypes {
		add(ct)
	}
	if len(policy.order) == 0 {
		for _, ct := range DefaultAllowedContentTypes {
			add(ct)
		}
	}
	return policy
}

// Check returns an UnsupportedFileTypeError naming the rejected type.
func (p FilePolicy) Check(contentType string) error {
	if p.allowed == nil {
		p = NewFilePolicy(nil)
	}
	normalized := NormalizeContentType(contentType)
	if _, ok := p.allowed[normalized]; ok && normalized != "" {
		return nil
	}
	return &UnsupportedFileTypeError{ContentType: strings.TrimSpace(contentType)}
}

// Allowed lists the accepted media types in configuration order.
func (p FilePolicy) Allowed() []string {
	if p.allowed == nil {
		return append([]string(nil), DefaultAllowedContentTypes...)
	}
	return append([]string(nil), p.order...)
}

// NormalizeContentType strips parameters and lowercases a declared media type.
func NormalizeContentType(contentType string) string {
	trimmed := strings.TrimSpace(contentType)
	if trimmed == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(trimmed); err == nil {
		return strings.ToLower(mediaType)
	}
	if idx := strings.Index(trimmed, ";"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.ToLower(strings.TrimSpace(trimmed))
}
