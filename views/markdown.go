package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/tripraptomo/stanza/markdown"
)

// Preview renders a post body through the same markdown pipeline the build
// uses, wrapped in a minimal page the editor opens in a new tab.
func Preview(title, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="robots" content="noindex"><title>%s</title><link rel="stylesheet" href="/_stanza/admin.css"></head><body><div class="wrap"><h1>%s</h1><article>`, esc(title), esc(title))
		if err != nil {
			return err
		}
		if err := markdown.Markdown(body).Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, `</article></div></body></html>`)
		return err
	})
}
