package ignore

// DefaultIgnorePatterns contains basename globs that are never treated as assets.
// Hidden files and tilde-suffixed folders are excluded separately.
var DefaultIgnorePatterns = []string{
	// Sidecars are resolved by the store, never enumerated as assets
	"*.meta",

	// Editor / OS noise
	"*.swp",
	"*.swo",
	"*.tmp",
	"Thumbs.db",
	"desktop.ini",

	// Generated project files
	"*.csproj",
	"*.sln",
	"*.pidb",
	"*.booproj",
	"*.unityproj",
	"*.userprefs",

	// Crash / log output
	"*.log",
	"sysinfo.txt",
}
