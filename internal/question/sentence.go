package question

import "strings"

func normalizePOS(pos string) string   { return strings.ToLower(pos) }
func normalizeCEFR(cefr string) string { return strings.ToUpper(cefr) }
func toLower(s string) string          { return strings.ToLower(s) }

const punctuation = ".,!?;:"

// CompleteSentence substitutes the answer into the blanked tokens and joins
// them into a sentence. Punctuation attaches to the previous token and
// apostrophe fragments ('s, n't) attach without surrounding spaces.
func CompleteSentence(blankedTokens []string, answer string) string {
	if len(blankedTokens) == 0 {
		return ""
	}

	tokens := make([]string, len(blankedTokens))
	for i, token := range blankedTokens {
		if token == Placeholder {
			tokens[i] = answer
		} else {
			tokens[i] = token
		}
	}

	var sentence strings.Builder
	sentence.WriteString(tokens[0])
	for i := 1; i < len(tokens); i++ {
		token := tokens[i]
		switch {
		case len(token) == 1 && strings.Contains(punctuation, token):
			sentence.WriteString(token)
		case strings.HasPrefix(token, "'") || strings.HasSuffix(tokens[i-1], "'"):
			sentence.WriteString(token)
		default:
			sentence.WriteString(" ")
			sentence.WriteString(token)
		}
	}
	return sentence.String()
}
