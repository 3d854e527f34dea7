// Package misc keeps build time information.
package misc

// Overwritten at build time with -ldflags "-X docxb/misc.version=...".
var (
	appName = "docxb"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
