package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the path of a route group's own root.
	RouterRootPath = "/"

	// APIPath prefixes the JSON API routes.
	APIPath = RootPath + "api"

	// ErrNilACDFatalLogMsg is used if app or env var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
