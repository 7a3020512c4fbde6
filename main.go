package main

import "github.com/josephlewis42/wordexp/cmd"

func main() {
	cmd.Execute()
}
