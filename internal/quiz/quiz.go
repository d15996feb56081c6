package quiz

import "fmt"

type styleKey struct {
	Vibe     string
	Priority string
}

// styleTags covers every (vibe, priority) pair the quiz frontend offers.
var styleTags = map[styleKey]string{
	{"Cozy", "Comfort"}:          "Hygge Haven",
	{"Cozy", "Aesthetics"}:       "Warm Aesthetic",
	{"Cozy", "Function"}:         "Practical Cozy",
	{"Modern", "Comfort"}:        "Modern Comfort",
	{"Modern", "Aesthetics"}:     "Sleek & Styled",
	{"Modern", "Function"}:       "Clean Functional",
	{"Boho", "Comfort"}:          "Free-Spirit Lounge",
	{"Boho", "Aesthetics"}:       "Boho Chic",
	{"Boho", "Function"}:         "Eclectic Practical",
	{"Minimalist", "Comfort"}:    "Calm Minimalist",
	{"Minimalist", "Aesthetics"}: "Minimal Aesthetic",
	{"Minimalist", "Function"}:   "Essential Living",
}

// StyleTag resolves the style label for a quiz answer pair. Pairs outside
// the table get a synthesized label so the endpoint never fails on input.
func StyleTag(vibe, priority string) string {
	if tag, ok := styleTags[styleKey{vibe, priority}]; ok {
		return tag
	}
	return fmt.Sprintf("%s • %s", vibe, priority)
}
