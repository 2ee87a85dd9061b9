// Command starfix serves and computes apparent positions of stars, planets,
// the Sun and the Moon.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
