package main

import "github.com/opsvista/opsvista/cmd"

func main() {
	cmd.Execute()
}
