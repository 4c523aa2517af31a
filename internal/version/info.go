package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// Info is the build metadata of the running binary.
type Info struct {
	Version    string
	GitCommit  string
	GitMessage string
	BuildDate  string
	GoVersion  string
	// Modified is set when the binary was built from a dirty tree.
	Modified bool
}

// Read collects Info. Values set through -ldflags win; otherwise the VCS
// stamps the go tool records are used.
func Read() Info {
	info := Info{
		Version:    Current(),
		GitCommit:  strings.TrimSpace(GitCommit),
		GitMessage: strings.TrimSpace(GitMessage),
		BuildDate:  strings.TrimSpace(BuildDate),
		GoVersion:  runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// ShortCommit returns the first 12 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.GitCommit) > 12 {
		return i.GitCommit[:12]
	}
	return i.GitCommit
}
