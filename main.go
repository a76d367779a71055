package main

import "github.com/tranvictor/vaultctl/cmd"

func main() {
	cmd.Execute()
}
