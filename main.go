package main

import "github.com/antonk9218/skinflip/cmd"

func main() {
	cmd.Execute()
}
