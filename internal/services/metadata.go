package services

import (
	"photofolio_api/internal/models"
)

// MetadataSchemaVersion tags the envelope layout. Version 1 lacked the
// terms/audit fields; MetadataFromMap fills their defaults when absent.
const MetadataSchemaVersion = "2"

// SessionMetadata is the envelope stuffed into the gateway's metadata bag at
// session creation and read back by the webhook handler. It is the only
// channel of continuity across the asynchronous round trip, so every field
// needed to reconstruct the booking lives here.
type SessionMetadata struct {
	PackageID       string
	PackageName     string
	PaymentType     models.PaymentType
	Locale          string
	SessionDate     string // RFC 3339, empty when unscheduled
	TermsAccepted   bool
	TermsAcceptedAt string // RFC 3339, empty when terms not accepted
	ClientIP        string
	ClientUserAgent string
}

// ToMap flattens the envelope into the string map the gateway accepts.
func (m SessionMetadata) ToMap() map[string]string {
	accepted := "false"
	if m.TermsAccepted {
		accepted = "true"
	}
	return map[string]string{
		"schemaVersion":   MetadataSchemaVersion,
		"packageId":       m.PackageID,
		"packageName":     m.PackageName,
		"paymentType":     string(m.PaymentType),
		"locale":          m.Locale,
		"sessionDate":     m.SessionDate,
		"termsAccepted":   accepted,
		"termsAcceptedAt": m.TermsAcceptedAt,
		"clientIp":        m.ClientIP,
		"userAgent":       m.ClientUserAgent,
	}
}

// MetadataFromMap decodes an envelope, applying defaults for fields absent
// in legacy (pre-v2) sessions: locale falls back to "en", terms fields to
// unaccepted, and an empty packageName is re-resolved from the catalog by
// the caller. This is the single decode site; readers never apply their own
// fallbacks.
func MetadataFromMap(raw map[string]string) SessionMetadata {
	if raw == nil {
		raw = map[string]string{}
	}
	locale := raw["locale"]
	if locale == "" {
		locale = "en"
	}
	return SessionMetadata{
		PackageID:       raw["packageId"],
		PackageName:     raw["packageName"],
		PaymentType:     models.PaymentType(raw["paymentType"]),
		Locale:          locale,
		SessionDate:     raw["sessionDate"],
		TermsAccepted:   raw["termsAccepted"] == "true",
		TermsAcceptedAt: raw["termsAcceptedAt"],
		ClientIP:        raw["clientIp"],
		ClientUserAgent: raw["userAgent"],
	}
}
