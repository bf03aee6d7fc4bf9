package app

import (
	"log/slog"
	"mime"
)

// staticMimeTypes covers extensions served from web/static that minimal
// container images may not know about.
var staticMimeTypes = map[string]string{
	".css":   "text/css; charset=utf-8",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
}

func init() {
	for ext, typ := range staticMimeTypes {
		registerMimeType(ext, typ)
	}
}

func registerMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		slog.Warn("register static mime type", slog.String("ext", ext), slog.Any("error", err))
	}
}
