// Package scaffold provides the embedded site skeleton written by the
// stanza CLI's new command.
package scaffold

import "embed"

// Templates contains all scaffold files. They use Go text/template syntax
// with [[ ]] delimiters and a .tmpl suffix; the {{ }} actions inside the
// generated layouts are literal text to the scaffolder.
//
//go:embed all:templates
var Templates embed.FS
