// Diagnostic tool for inspecting composite spatial datasets
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"

	"github.com/robert-malhotra/go-spatialdata/spatialdata"
	"github.com/robert-malhotra/go-spatialdata/zarr"
)

type config struct {
	Format string `toml:"format"`
	Strict bool   `toml:"strict"`
	Dump   bool   `toml:"dump"`
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		strict     = flag.Bool("strict", false, "validate multiscales metadata against the schema")
		dump       = flag.Bool("dump", false, "dump the full decoded snapshot")
		tree       = flag.Bool("tree", false, "print the raw store tree instead of decoding")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sdinfo [flags] <store.zarr>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	var cfg config
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *strict {
		cfg.Strict = true
	}
	if *dump {
		cfg.Dump = true
	}

	if *tree {
		if err := printTree(path); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var opts []spatialdata.Option
	if cfg.Format != "" {
		f, err := spatialdata.ParseFormatVersion(cfg.Format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, spatialdata.WithFormat(f))
	}
	if cfg.Strict {
		opts = append(opts, spatialdata.WithStrictMetadata())
	}

	sd, err := spatialdata.Read(path, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("=== %s ===\n\n", path)
	printImages("Images", sd.Images)
	printImages("Labels", sd.Labels)
	printPoints(sd.Points)
	printPolygons(sd.Polygons)
	printShapes(sd.Shapes)
	printTable(sd.Table)

	if cfg.Dump {
		fmt.Println()
		spew.Dump(sd)
	}
}

// printTree walks the raw store without decoding any element semantics.
func printTree(path string) error {
	store, err := zarr.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	return zarr.Walk(store.Root(), func(p string, obj interface{}, err error) error {
		if err != nil {
			fmt.Printf("%s: ERROR: %v\n", p, err)
			return nil
		}
		switch o := obj.(type) {
		case *zarr.Group:
			fmt.Printf("group   %s\n", p)
		case *zarr.Dataset:
			fmt.Printf("dataset %s shape=%v chunks=%v\n", p, o.Shape(), o.Chunks())
		}
		return nil
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printImages(header string, m map[string]spatialdata.ImageElement) {
	fmt.Printf("%s: %d\n", header, len(m))
	for _, key := range sortedKeys(m) {
		switch el := m[key].(type) {
		case *spatialdata.LabeledArray:
			fmt.Printf("  %s: %s\n", key, describeLevel(el))
		case *spatialdata.Multiscale:
			fmt.Printf("  %s: %d levels\n", key, el.NumLevels())
			for i, lv := range el.Levels() {
				fmt.Printf("    scale%d: %s\n", i, describeLevel(lv))
			}
		}
	}
}

func describeLevel(la *spatialdata.LabeledArray) string {
	dims := make([]string, len(la.Data.Shape))
	for i, d := range la.Data.Shape {
		dims[i] = fmt.Sprint(d)
	}
	shape := strings.Join(dims, "x")
	if len(la.Axes) > 0 {
		shape += " (" + strings.Join(la.Axes, ",") + ")"
	}
	return fmt.Sprintf("%s, %s", shape, humanize.Bytes(la.Data.ByteSize()))
}

func printPoints(m map[string]*spatialdata.PointsElement) {
	fmt.Printf("Points: %d\n", len(m))
	for _, key := range sortedKeys(m) {
		fmt.Printf("  %s: %d points\n", key, m[key].NumPoints())
	}
}

func printPolygons(m map[string]*spatialdata.GeometryCollection) {
	fmt.Printf("Polygons: %d\n", len(m))
	for _, key := range sortedKeys(m) {
		gc := m[key]
		fmt.Printf("  %s: %d %s geometries\n", key, len(gc.Geometries), gc.Type)
	}
}

func printShapes(m map[string]*spatialdata.ShapesElement) {
	fmt.Printf("Shapes: %d\n", len(m))
	for _, key := range sortedKeys(m) {
		fmt.Printf("  %s: %d rows\n", key, m[key].Table.NumRows)
	}
}

func printTable(t *spatialdata.AnnotationTable) {
	if t == nil {
		fmt.Println("Table: none")
		return
	}
	fmt.Printf("Table: %d rows\n", t.NumRows)
	if cols := t.Columns(); len(cols) > 0 {
		fmt.Printf("  columns: %s\n", strings.Join(cols, ", "))
	}
	if t.ObsIndex != "" {
		fmt.Printf("  index: %s\n", t.ObsIndex)
	}
	if t.X != nil {
		fmt.Printf("  X: %v, %s\n", t.X.Shape, humanize.Bytes(t.X.ByteSize()))
	}
}
