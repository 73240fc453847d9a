package main

import "github.com/pfrederiksen/nearby-events/internal/cli"

func main() {
	cli.Execute()
}
