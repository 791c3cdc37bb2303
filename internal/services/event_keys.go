package services

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CertificateEventKey identifies the notification for an issued certificate.
func CertificateEventKey(certificateID uuid.UUID) string {
	return "certificate:" + certificateID.String()
}

// AchievementEventKey identifies the notification for an unlocked achievement.
// Names that differ only in case, accents or punctuation share a key.
func AchievementEventKey(name string) string {
	return "achievement:" + Slugify(name)
}

// Slugify reduces s to lower-case ASCII letters and digits separated by single hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
