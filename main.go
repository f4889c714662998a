package main

import "dirmerge/cmd"

func main() {
	cmd.Execute()
}
