package main

import "github.com/papapumpkin/lineup/cmd"

func main() {
	cmd.Execute()
}
