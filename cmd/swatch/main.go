// Swatch - colour palettes from images
//
// Swatch extracts a small set of representative colours from an image and
// provides the colour maths around them: contrast, harmonies and gradients.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/swatch/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
