package main

import "kinky/internal/cli"

func main() {
	cli.Execute()
}
