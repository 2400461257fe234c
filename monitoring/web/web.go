// Package web embeds the static dashboard page served by the monitoring
// server.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"
)

//go:embed dist/*
var staticAssets embed.FS

// Assets returns the file system holding the dashboard page. Setting
// CHRONO_MONITOR_DEV=1 serves the files from the source tree instead, so the
// page can be edited without recompiling.
func Assets() http.FileSystem {
	if devMode() {
		_, thisFile, _, ok := runtime.Caller(0)
		if !ok {
			panic("cannot locate the web asset directory")
		}

		assetPath := path.Join(path.Dir(thisFile), "dist")
		fmt.Fprintf(os.Stderr,
			"Serving monitor assets from %s\n", assetPath)

		return http.Dir(assetPath)
	}

	subFS, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(subFS)
}

func devMode() bool {
	value, exist := os.LookupEnv("CHRONO_MONITOR_DEV")
	if !exist {
		return false
	}

	return value == "1" || strings.ToLower(value) == "true"
}
