package main

import "docquery/internal/cli"

func main() {
	cli.Execute()
}
