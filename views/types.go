// Package views holds the editor UI as plain-Go templ components. The view
// models here are deliberately flat: the engine translates its own types
// into these before rendering, so the package never imports it back.
package views

// PostRow is one line of the dashboard post table.
type PostRow struct {
	Title string
	Date  string
	URL   string
	Path  string // content-relative source path, the edit key
	Draft bool
}

// Doc is the editable form of one post file.
type Doc struct {
	Path    string // content-relative source path; empty for a new post
	Slug    string
	Title   string
	Date    string // YYYY-MM-DD, becomes the filename prefix on create
	Tags    string // comma separated for the form field
	Summary string
	Body    string
	Draft   bool
}

// Image is one uploaded file in the media list.
type Image struct {
	Name string
	URL  string
	Size string
}
