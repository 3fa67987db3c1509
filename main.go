package main

import "github.com/kamal-hamza/upkg/cmd"

func main() {
	cmd.Execute()
}
