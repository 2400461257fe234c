package main

import "github.com/scopelab/chrono/cmd/chrono/cmd"

func main() {
	cmd.Execute()
}
