package app

// Version is overridden at link time with -ldflags "-X flexvg/internal/app.Version=...".
var Version = "0.3.0-dev"
