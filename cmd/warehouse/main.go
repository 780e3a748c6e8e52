package main

import "github.com/andrescamacho/fascia-warehouse/internal/adapters/cli"

func main() {
	cli.Execute()
}
