package main

import (
	"price-tracker/internal/cli"
)

func main() {
	cli.Execute()
}
