package main

import "github.com/marender/immertrack/cmd"

func main() {
	cmd.Execute()
}
