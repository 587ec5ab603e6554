package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version information - injected at build time via ldflags
var (
	Version   = "dev"
	Build     = "unknown"
	BuildTime = ""
)

func printVersion() {
	fmt.Printf("taskdeck version %s", Version)
	if Build != "unknown" && Build != "" {
		fmt.Printf(" (build: %s)", Build)
	}
	if BuildTime != "" {
		fmt.Printf(" [%s]", BuildTime)
	}
	fmt.Println()

	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" && len(setting.Value) > 7 {
					fmt.Printf("Commit: %s\n", setting.Value[:7])
					break
				}
			}
		}
	}
}
