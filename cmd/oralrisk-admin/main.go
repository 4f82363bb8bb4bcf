package main

import "github.com/turtacn/oralrisk/cmd/cli"

func main() {
	cli.Execute()
}
