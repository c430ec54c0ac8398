package main

import (
	"github.com/mchmarny/kinfeat/pkg/cli"
)

func main() {
	cli.Execute()
}
