// Package greeting implements get_greeting: a tiny localised lookup
// table, not a scheduling concern. It exists so the command shell has
// something to print before the first workspace is created.
package greeting

import (
	"fmt"

	"github.com/willdone/timeline-core/internal/cli"
)

var greetings = map[string]string{
	"en": "Let's get things done.",
	"es": "Manos a la obra.",
	"fr": "Passons aux choses sérieuses.",
	"de": "Packen wir's an.",
}

// Get returns the greeting for lang, falling back to English for an
// unrecognised language code.
func Get(lang string) string {
	if g, ok := greetings[lang]; ok {
		return g
	}
	return greetings["en"]
}

type GetCmd struct {
	Lang string `arg:"" help:"Language code (en, es, fr, de)." default:"en"`
}

func (c *GetCmd) Run(ctx *cli.Context) error {
	fmt.Println(Get(c.Lang))
	return nil
}
