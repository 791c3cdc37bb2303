package services

import (
	"regexp"
	"strings"
)

// Display names appear on leaderboards other learners see, so names and bios are
// screened before they are stored.

var bannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing",
}

var (
	bannedPattern = regexp.MustCompile(`(?i)\b(` + quoteAll(bannedWords) + `)\b`)
	urlPattern    = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	emailPattern  = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	phonePattern  = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
)

const (
	ReasonLanguage    = "inappropriate_language"
	ReasonURL         = "url_not_allowed"
	ReasonContactInfo = "contact_info_not_allowed"
)

var rejectionMessages = map[string]string{
	ReasonLanguage:    "contains inappropriate language",
	ReasonURL:         "cannot contain web links",
	ReasonContactInfo: "cannot contain contact information",
}

// RejectedContentError names the field that failed screening.
type RejectedContentError struct {
	Field  string
	Reason string
}

func (e *RejectedContentError) Error() string {
	return e.Field + " " + e.Message()
}

// Message is the user-facing explanation without the field name.
func (e *RejectedContentError) Message() string {
	if msg, ok := rejectionMessages[e.Reason]; ok {
		return msg
	}
	return "does not meet our content guidelines"
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// ScreenText returns the rejection reason for text, or "" when it is acceptable.
func ScreenText(text string) string {
	switch {
	case text == "":
		return ""
	case bannedPattern.MatchString(text):
		return ReasonLanguage
	case urlPattern.MatchString(text):
		return ReasonURL
	case emailPattern.MatchString(text), phonePattern.MatchString(text):
		return ReasonContactInfo
	}
	return ""
}

func screenField(field, text string) error {
	if reason := ScreenText(text); reason != "" {
		return &RejectedContentError{Field: field, Reason: reason}
	}
	return nil
}
