package approval

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/aretw0/concierge/pkg/domain"
)

var yesTokens = map[string][]string{
	"en": {"y", "yes"},
	"es": {"s", "si", "sí"},
	"pt": {"s", "sim"},
}

var prompts = map[string]string{
	"en": "I am about to run the action below.\n\n%s\n\nDo you approve of the above action? Type 'y' to continue; otherwise, explain your requested change.",
	"es": "Estoy a punto de ejecutar la siguiente acción.\n\n%s\n\n¿Apruebas la acción anterior? Escribe 'si' para continuar; de lo contrario, explica el cambio que necesitas.",
	"pt": "Estou prestes a executar a ação abaixo.\n\n%s\n\nVocê aprova a ação acima? Digite 's' para continuar; caso contrário, explique a alteração desejada.",
}

// Language reduces a locale tag such as "es-CL" or "English" to the base language
// the gate has tokens for, falling back to English.
func Language(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case strings.HasPrefix(tag, "es"), strings.HasPrefix(tag, "spa"):
		return "es"
	case strings.HasPrefix(tag, "pt"), strings.HasPrefix(tag, "por"):
		return "pt"
	}
	return "en"
}

// Classify maps free-text input to an outcome. Only an affirmative token of the session
// language (or English, which every user can fall back to) confirms.
func Classify(input, language string) Outcome {
	token := strings.ToLower(strings.TrimSpace(input))
	token = strings.TrimRightFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	token = strings.TrimLeft(token, "¡¿")

	for _, lang := range []string{Language(language), "en"} {
		for _, yes := range yesTokens[lang] {
			if token == yes {
				return Confirmed()
			}
		}
	}
	return Denied(input)
}

// Prompt renders the localized confirmation request for a call.
func Prompt(language string, call domain.ToolCall) string {
	return fmt.Sprintf(prompts[Language(language)], Describe(call))
}

// Describe renders a call as its name followed by its arguments in key order.
func Describe(call domain.ToolCall) string {
	var b strings.Builder
	b.WriteString(call.Name)

	keys := make([]string, 0, len(call.Args))
	for k := range call.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- %s: %v", k, call.Args[k])
	}
	return b.String()
}
