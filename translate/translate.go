// Package translate formats user-facing messages for the host locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var (
	printerOnce sync.Once
	printer     *message.Printer
)

func loadPrinter() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("ls8: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
//
// Numeric arguments are formatted with the locale's digit grouping, so
// machine-readable output (such as PRN values) must not go through here.
func From(key message.Reference, args ...any) string {
	printerOnce.Do(loadPrinter)
	return printer.Sprintf(key, args...)
}
