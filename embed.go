package stanza

import "embed"

// EmbeddedAssets contains assets shipped with the engine: the live reload
// client and the editor UI styling.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
