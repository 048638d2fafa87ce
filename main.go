package main

import "github.com/zinc-sig/ferry/cmd"

func main() {
	cmd.Execute()
}
