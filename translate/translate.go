// Package translate localises the user-visible messages of tinyvm.
package translate

import (
	"log"
	"strconv"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("tinyvm: locale: %v", err)
	}

	var tags []language.Tag
	for _, name := range locales {
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}

	// Default to en-US when no locale is usable.
	tags = append(tags, language.AmericanEnglish)

	printer = message.NewPrinter(tags[0])
}

// Int formats a machine value as plain decimal digits, without the
// locale's digit grouping. Pass it to From with a %s verb.
func Int[T ~int | ~int32 | ~int64](value T) string {
	return strconv.FormatInt(int64(value), 10)
}

// From formats an en-US Sprintf() format in the current locale.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
