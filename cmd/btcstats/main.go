package main

import "bitcoin-stats/internal/cli"

func main() {
	cli.Execute()
}
