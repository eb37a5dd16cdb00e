package main

import "github.com/kamal-hamza/collage-cli/cmd"

func main() {
	cmd.Execute()
}
