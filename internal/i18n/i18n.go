// Package i18n provides locale-aware message printers for CLI output.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we support
var SupportedLangs = []language.Tag{
	language.English,
	language.German, // For testing/example
}

var matcher = language.NewMatcher(SupportedLangs)

// MatchLanguage returns the best matching language for the given tags
func MatchLanguage(acceptLang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLang)
	tag, _, _ := matcher.Match(tags...)
	return tag
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	lang := os.Getenv("LC_ALL")
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	if lang == "" {
		return message.NewPrinter(DefaultLang)
	}

	// Strip encoding (e.g. .UTF-8) if present
	if i := strings.Index(lang, "."); i != -1 {
		lang = lang[:i]
	}

	// Env vars look like "en_US", not HTTP Accept-Language headers.
	// Try a direct parse first, then fall back to the matcher.
	tag, err := language.Parse(lang)
	if err != nil {
		tag = MatchLanguage(lang)
	} else {
		// Map "en-US" -> "en" if that's what we support
		tag, _, _ = matcher.Match(tag)
	}

	return message.NewPrinter(tag)
}
