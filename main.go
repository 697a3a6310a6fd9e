package main

import (
	"os"

	"github.com/moratsam/opencl-temporal-denoise/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
