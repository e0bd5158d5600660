package main

import (
	"go.aimuz.me/flicker/internal/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Execute(cmd.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
}
