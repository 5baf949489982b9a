package main

import "campusinterview/internal/cli"

func main() {
	cli.Execute()
}
