// Example printing shaped Arabic samples next to their code points.
//
//	go run ./docs/examples
package main

import (
	"fmt"

	"github.com/atomicdeploy/arshape/pkg/codepoint"
	"github.com/atomicdeploy/arshape/pkg/shaper"
)

func main() {
	samples := []string{
		"العربية",
		"لا",
		"مرحبا Hello",
		"(ب)",
		"你好",
	}

	for _, s := range samples {
		shaped := shaper.Shape(s)
		fmt.Printf("%-14s -> %s\n", s, shaped)
		fmt.Printf("%14s    %s\n", "", codepoint.Format(shaped))
	}

	logical := shaper.ShapeWith("العربية", shaper.Options{Logical: true})
	fmt.Printf("\nlogical order: %s\n", logical)
	fmt.Printf("stages:        %v\n", shaper.Stages(shaper.Options{Logical: true}))
}
