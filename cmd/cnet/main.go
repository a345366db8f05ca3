package main

import "github.com/OpenTraceLab/circuitnet/cmd/cnet/cmd"

func main() {
	cmd.Execute()
}
