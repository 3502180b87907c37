package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

// marker wraps the recommended product name in oracle output.
const marker = "**"

var markedName = regexp.MustCompile(`\*\*(.+?)\*\*`)

func buildMoodPrompt(names []string, userText string) string {
	return strings.Join([]string{
		"Role:",
		"You are a friendly coffee sommelier suggesting a coffee that suits the customer's mood.",
		"",
		"Available Coffees:",
		strings.Join(names, ", "),
		"",
		"Customer Message:",
		fmt.Sprintf("%q", normalizePromptInput(userText)),
		"",
		"Behavior Rules:",
		behaviorRules(),
		"",
		"Output Contract:",
		outputContract(),
	}, "\n")
}

func behaviorRules() string {
	return strings.Join([]string{
		"1) Infer the emotional tone of the message (happy, tired, stressed, ...).",
		"2) Suggest exactly one coffee, chosen only from the available coffees.",
		"3) Vary your phrasing; never mention that you are analysing their mood.",
	}, "\n")
}

func outputContract() string {
	return "Answer in one conversational sentence. " +
		"Wrap the coffee name in double asterisks exactly as listed, for example: " +
		"\"Let's brighten your day with a **Vanilla Latte**!\""
}

func normalizePromptInput(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// extractProductName recovers the recommended product from free text. The
// first **marked** span wins and is normalised to its catalog name when it
// matches one; otherwise it is returned verbatim. Without markers the first
// catalog name found in the text is used. Returns "" when nothing is found.
func extractProductName(text string, names []string) string {
	if m := markedName.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if candidate != "" {
			for _, name := range names {
				if strings.EqualFold(name, candidate) {
					return name
				}
			}
			return candidate
		}
	}
	lower := strings.ToLower(text)
	for _, name := range names {
		if name != "" && strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

func foldPattern(name string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(name))
}

func markedPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\*\*\s*` + regexp.QuoteMeta(name) + `\s*\*\*`)
}

func replaceFirst(text string, re *regexp.Regexp, repl string) (string, bool) {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text, false
	}
	return text[:loc[0]] + repl + text[loc[1]:], true
}

// substituteName swaps the first mention of from for to, preferring a marked
// mention.
func substituteName(text, from, to string) string {
	if out, ok := replaceFirst(text, markedPattern(from), marker+to+marker); ok {
		return out
	}
	out, _ := replaceFirst(text, foldPattern(from), to)
	return out
}

// ensureMarked wraps the first mention of name in markers unless a marked
// mention already exists.
func ensureMarked(text, name string) string {
	if name == "" || markedPattern(name).MatchString(text) {
		return text
	}
	re := foldPattern(name)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + marker + text[loc[0]:loc[1]] + marker + text[loc[1]:]
}
