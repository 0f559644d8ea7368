package main

import "github.com/chrisuehlinger/domports/cmd"

func main() {
	cmd.Execute()
}
