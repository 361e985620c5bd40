package buildinfo

// Set via -ldflags "-X teamplanner/internal/buildinfo.Version=..."
var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"builtAt": BuiltAt,
	}
}

// UserAgent is sent on every backend request.
func UserAgent() string {
	if Commit == "" {
		return "planctl/" + Version
	}
	return "planctl/" + Version + " (" + Commit + ")"
}
