package pipeline

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// DefaultLanguage is stored when detection is inconclusive or transcription
// failed.
const DefaultLanguage = "eng"

// DetectLanguage classifies transcript text as "fr" or "eng". Anything the
// detector reports outside French collapses to "eng".
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return DefaultLanguage
	}
	info := whatlanggo.Detect(text)
	code := whatlanggo.LangToString(info.Lang)
	if strings.HasPrefix(code, "fr") {
		return "fr"
	}
	return DefaultLanguage
}

// translationTarget returns the opposite-language target code passed to the
// translation provider.
func translationTarget(detected string) string {
	if detected == DefaultLanguage {
		return "fr"
	}
	return "en"
}
