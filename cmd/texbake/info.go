package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/texbake/internal/scene"
)

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: texbake info <scene.yaml>")
		os.Exit(1)
	}

	sc, err := scene.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scene:   %s\n", args[0])
	if active, err := sc.Active(); err == nil {
		fmt.Printf("Active:  %s\n", active.Name())
	}
	var selected []string
	for _, o := range sc.Selected() {
		selected = append(selected, o.Name())
	}
	fmt.Printf("Sources: %s\n", strings.Join(selected, ", "))

	fmt.Println()
	fmt.Println("Objects:")
	for _, o := range sc.Objects() {
		if !o.IsMesh() {
			fmt.Printf("  %-16s empty\n", o.Name())
			continue
		}
		tris := "?"
		if m, err := sc.EvaluateMesh(context.Background(), o); err == nil {
			tris = fmt.Sprint(m.TriangleCount())
			sc.ReleaseMesh(m)
		}
		var mods []string
		for _, k := range o.Modifiers() {
			mods = append(mods, strings.ToLower(string(k)))
		}
		fmt.Printf("  %-16s %s triangles, pass index %d", o.Name(), tris, o.PassIndex())
		if len(mods) > 0 {
			fmt.Printf(", modifiers: %s", strings.Join(mods, " "))
		}
		fmt.Println()
		for i, slot := range o.Materials() {
			image := "(no image)"
			if slot.Image != nil {
				image = slot.Image.Name()
			}
			fmt.Printf("    [%d] %-12s %s\n", i, slot.Name, image)
		}
	}

	fmt.Println()
	fmt.Println("Images:")
	for _, img := range sc.Images() {
		r := img.Raster()
		if r == nil {
			fmt.Printf("  %-16s not initialized\n", img.Name())
			continue
		}
		depth := "8-bit"
		if r.Float {
			depth = "float"
		}
		fmt.Printf("  %-16s %dx%d %s %s", img.Name(), r.Width, r.Height, depth, r.Colorspace)
		if img.Path() != "" {
			fmt.Printf("  %s", img.Path())
		}
		fmt.Println()
	}
}
