package config

// Lua schema field names and globals
const (
	luaGlobalBootstrap   = "bootstrap"
	luaFieldRepository   = "repository"
	luaFieldTool         = "tool"
	luaFieldTag          = "tag"
	luaFieldInstallDir   = "install_dir"
	luaFieldStrategy     = "strategy"
	luaFieldAPIURL       = "api_url"
	luaFieldDownloadURL  = "download_url"
	luaFieldTimeout      = "timeout"
	luaFieldMaxRedirects = "max_redirects"
	luaFieldElevate      = "elevate"
)

// knownFields lists every key accepted in the bootstrap table.
var knownFields = map[string]bool{
	luaFieldRepository:   true,
	luaFieldTool:         true,
	luaFieldTag:          true,
	luaFieldInstallDir:   true,
	luaFieldStrategy:     true,
	luaFieldAPIURL:       true,
	luaFieldDownloadURL:  true,
	luaFieldTimeout:      true,
	luaFieldMaxRedirects: true,
	luaFieldElevate:      true,
}
