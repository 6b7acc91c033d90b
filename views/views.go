package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

func shell(title string, body func(io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><meta name="robots" content="noindex"><title>%s</title><link rel="stylesheet" href="/_stanza/admin.css"></head><body><div class="wrap">`, esc(title))
		if err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err = io.WriteString(w, `</div></body></html>`)
		return err
	})
}

func header(w io.Writer, csrfToken string) error {
	_, err := fmt.Fprintf(w, `<header class="bar"><h1>stanza editor</h1><nav><a href="/_stanza/admin/">Posts</a><a href="/_stanza/admin/edit/">New post</a><a href="/_stanza/admin/images/">Images</a><a href="/" target="_blank">View site</a></nav><form method="post" action="/_stanza/admin/logout/"><input type="hidden" name="_csrf" value="%s"><button type="submit">Log out</button></form></header>`, esc(csrfToken))
	return err
}

// Login renders the password prompt.
func Login(showError bool, csrfToken string) templ.Component {
	return shell("Log in", func(w io.Writer) error {
		if _, err := io.WriteString(w, `<form class="login editor" method="post" action="/_stanza/admin/login/">`); err != nil {
			return err
		}
		if showError {
			if _, err := io.WriteString(w, `<p class="flash error">Wrong password.</p>`); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<label for="password">Password</label><input type="password" id="password" name="password" autofocus><input type="hidden" name="_csrf" value="%s"><button type="submit">Log in</button></form>`, esc(csrfToken))
		return err
	})
}

// Dashboard renders the post table with edit links.
func Dashboard(rows []PostRow, flash, csrfToken string) templ.Component {
	return shell("Posts", func(w io.Writer) error {
		if err := header(w, csrfToken); err != nil {
			return err
		}
		if flash != "" {
			if _, err := fmt.Fprintf(w, `<p class="flash">%s</p>`, esc(flash)); err != nil {
				return err
			}
		}
		if len(rows) == 0 {
			_, err := io.WriteString(w, `<p>No posts yet. <a href="/_stanza/admin/edit/">Write the first one.</a></p>`)
			return err
		}
		if _, err := io.WriteString(w, `<table class="posts"><thead><tr><th>Title</th><th>Date</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, r := range rows {
			badge := ""
			if r.Draft {
				badge = `<span class="draft-badge">draft</span>`
			}
			if _, err := fmt.Fprintf(w, `<tr><td><a href="/_stanza/admin/edit/?path=%s">%s</a>%s</td><td class="date">%s</td></tr>`,
				esc(r.Path), esc(r.Title), badge, esc(r.Date)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

// Editor renders the edit form for one post file. An empty doc path means a
// new post; the date field then becomes the filename prefix.
func Editor(doc Doc, csrfToken string) templ.Component {
	title := "Edit post"
	if doc.Path == "" {
		title = "New post"
	}
	return shell(title, func(w io.Writer) error {
		if err := header(w, csrfToken); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<form class="editor" method="post" action="/_stanza/admin/save/"><input type="hidden" name="path" value="%s"><input type="hidden" name="_csrf" value="%s">`,
			esc(doc.Path), esc(csrfToken)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<label for="title">Title</label><input type="text" id="title" name="title" value="%s">`, esc(doc.Title)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<label for="date">Date</label><input type="text" id="date" name="date" value="%s" placeholder="YYYY-MM-DD">`, esc(doc.Date)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<label for="slug">Slug</label><input type="text" id="slug" name="slug" value="%s" placeholder="derived from title when empty">`, esc(doc.Slug)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<label for="tags">Tags</label><input type="text" id="tags" name="tags" value="%s" placeholder="comma, separated">`, esc(doc.Tags)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<label for="summary">Summary</label><input type="text" id="summary" name="summary" value="%s">`, esc(doc.Summary)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<label for="body">Body</label><textarea id="body" name="body">%s</textarea>`, esc(doc.Body)); err != nil {
			return err
		}
		draftChecked := ""
		if doc.Draft {
			draftChecked = " checked"
		}
		if _, err := fmt.Fprintf(w, `<label><input type="checkbox" name="draft"%s> Draft</label><button type="submit">Save</button></form>`, draftChecked); err != nil {
			return err
		}
		if doc.Path != "" {
			if _, err := fmt.Fprintf(w, `<form method="post" action="/_stanza/admin/preview/" target="_blank"><input type="hidden" name="path" value="%s"><input type="hidden" name="_csrf" value="%s"><button type="submit">Preview</button></form>`,
				esc(doc.Path), esc(csrfToken)); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, `<form method="post" action="/_stanza/admin/delete/" onsubmit="return confirm('Delete this post?')"><input type="hidden" name="path" value="%s"><input type="hidden" name="_csrf" value="%s"><button type="submit" class="danger">Delete</button></form>`,
				esc(doc.Path), esc(csrfToken)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Images renders the media list with an upload form. Uploads land in the
// site's static dir, so their URLs work in both the editor and the built
// output.
func Images(imgs []Image, flash, csrfToken string) templ.Component {
	return shell("Images", func(w io.Writer) error {
		if err := header(w, csrfToken); err != nil {
			return err
		}
		if flash != "" {
			if _, err := fmt.Fprintf(w, `<p class="flash">%s</p>`, esc(flash)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<form class="editor" method="post" action="/_stanza/admin/images/upload/" enctype="multipart/form-data"><label for="file">Upload image</label><input type="file" id="file" name="file" accept="image/*"><input type="hidden" name="_csrf" value="%s"><button type="submit">Upload</button></form>`, esc(csrfToken)); err != nil {
			return err
		}
		if len(imgs) == 0 {
			_, err := io.WriteString(w, `<p>No uploads yet.</p>`)
			return err
		}
		if _, err := io.WriteString(w, `<table class="posts"><thead><tr><th>File</th><th>Size</th><th></th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, img := range imgs {
			if _, err := fmt.Fprintf(w, `<tr><td><a href="%s" target="_blank">%s</a></td><td class="date">%s</td><td><form method="post" action="/_stanza/admin/images/delete/" onsubmit="return confirm('Delete %s?')"><input type="hidden" name="name" value="%s"><input type="hidden" name="_csrf" value="%s"><button type="submit" class="danger">Delete</button></form></td></tr>`,
				esc(img.URL), esc(img.Name), esc(img.Size), esc(img.Name), esc(img.Name), esc(csrfToken)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

// NotFound renders the editor's 404 page.
func NotFound() templ.Component {
	return shell("Not found", func(w io.Writer) error {
		_, err := io.WriteString(w, `<p>Not found. <a href="/_stanza/admin/">Back to posts.</a></p>`)
		return err
	})
}
