package main

import "github.com/slipscan/slipscan/cmd/slipscan/cmd"

func main() {
	cmd.Execute()
}
