package main

import "github.com/KaramelBytes/census-explorer/cmd"

func main() {
	cmd.Execute()
}
