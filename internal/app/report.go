package app

import (
	"errors"
	"strings"

	"ingredient-scanner/internal/domain"
	"ingredient-scanner/internal/wordlist"
)

// Messages shown when a scan has nothing to list.
const (
	NoTextMessage    = "No text detected"
	NoMatchesMessage = "No suspicious or prohibited ingredients detected!"
)

// RecognitionNotice replaces recognizer errors in anything shown to users.
const RecognitionNotice = "Error processing image. Please try again."

// UserMessage returns the text to show a user for err. Recognition
// failures become RecognitionNotice; their cause is only logged.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if domain.TypeOf(err) == domain.ErrorTypeRecognitionFailure {
		return RecognitionNotice
	}
	var de *domain.DomainError
	if errors.As(err, &de) && de.Type == domain.ErrorTypeInvalidInput && de.Message != "" {
		return de.Message
	}
	return err.Error()
}

// Finding is one matched phrase with the list it came from.
type Finding struct {
	Category wordlist.Category `json:"category"`
	Phrase   string            `json:"phrase"`
}

// Report lists a result's findings, prohibited before suspicious. When
// there are none, message explains why.
func Report(res *ScanResult) (findings []Finding, message string) {
	if res == nil || strings.TrimSpace(res.Text) == "" {
		return nil, NoTextMessage
	}
	for _, p := range res.Matches.Prohibited {
		findings = append(findings, Finding{Category: wordlist.Prohibited, Phrase: p})
	}
	for _, p := range res.Matches.Suspicious {
		findings = append(findings, Finding{Category: wordlist.Suspicious, Phrase: p})
	}
	if len(findings) == 0 {
		return nil, NoMatchesMessage
	}
	return findings, ""
}
