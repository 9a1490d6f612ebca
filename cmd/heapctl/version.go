package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Overridden with -ldflags "-X main.version=..." for release builds.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := readBuildInfo()
		if jsonOut {
			_ = printJSON(info)
			return
		}
		fmt.Printf("heapctl %s\n", info.Version)
		fmt.Printf("  go: %s\n", info.GoVersion)
		fmt.Printf("  commit: %s\n", info.Commit)
		fmt.Printf("  built: %s\n", info.Date)
		if info.Modified {
			fmt.Println("  modified: true")
		}
	},
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
}

// readBuildInfo fills BuildInfo from the module and VCS stamps the go tool
// embeds. An ldflags version takes precedence over the module version.
func readBuildInfo() BuildInfo {
	info := BuildInfo{Version: version, Commit: "none", Date: "unknown"}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			info.Date = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
