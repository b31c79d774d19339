package main

import "geman/internal/cli"

func main() {
	cli.Execute()
}
