package main

import "github.com/forPelevin/highcut/internal/cli"

func main() {
	cli.Main()
}
