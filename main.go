package main

import "github.com/Bitlatte/ctfsite/cmd"

func main() {
	cmd.Execute()
}
