// fieldtool is a headless CLI for painting density fields, meshing them and
// exporting the results.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/marchfield/internal/config"
	"github.com/Faultbox/marchfield/internal/export"
	"github.com/Faultbox/marchfield/internal/logger"
	"github.com/Faultbox/marchfield/pkg/march"
	"github.com/Faultbox/marchfield/pkg/mesh"
	"github.com/Faultbox/marchfield/pkg/plane"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "mesh":
		cmdMesh(args)
	case "export":
		cmdExport(args)
	case "import":
		cmdImport(args)
	case "circles":
		cmdCircles(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fieldtool - marching squares density field utility

Usage:
  fieldtool <command> [options]

Commands:
  mesh      Paint strokes and print viewport mesh statistics
  export    Paint strokes and write every chunk as an image
  import    Mesh a grayscale image as a single chunk
  circles   Paint the nested circle pattern and print statistics

Common options:
  --config <file>     Load field settings from a YAML config
  --stroke x,y,r      Paint a circle (repeatable)
  --debug             Enable debug logging

Examples:
  fieldtool mesh --stroke 0,0,3 --stroke 40,8,5 --obj field.obj
  fieldtool export --stroke 10,10,6 --out ./chunks --format bmp
  fieldtool import chunk_0_0.png
  fieldtool circles --levels 6`)
}

// strokeList collects repeated --stroke x,y,r flags.
type strokeList []plane.Circle

func (s *strokeList) String() string {
	parts := make([]string, len(*s))
	for i, c := range *s {
		parts[i] = fmt.Sprintf("%g,%g,%g", c.X, c.Y, c.Radius)
	}
	return strings.Join(parts, " ")
}

func (s *strokeList) Set(v string) error {
	fields := strings.Split(v, ",")
	if len(fields) != 3 {
		return fmt.Errorf("stroke %q: want x,y,r", v)
	}
	var vals [3]float32
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return fmt.Errorf("stroke %q: %w", v, err)
		}
		vals[i] = float32(n)
	}
	if vals[2] <= 0 {
		return fmt.Errorf("stroke %q: radius must be positive", v)
	}
	*s = append(*s, plane.Circle{X: vals[0], Y: vals[1], Radius: vals[2]})
	return nil
}

// common holds the options every command shares.
type common struct {
	configPath string
	debug      bool
	strokes    strokeList
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Path to config file")
	fs.BoolVar(&c.debug, "debug", false, "Enable debug logging")
	fs.Var(&c.strokes, "stroke", "Circle to paint as x,y,r (repeatable)")
}

// setup loads config, starts logging and builds a plane with the configured
// strokes followed by the command-line ones.
func (c *common) setup() (*config.Config, *plane.Plane) {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if c.debug {
		cfg.Logging.Level = "debug"
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	p := plane.New(
		plane.WithSeed(cfg.Field.Seed),
		plane.WithChunkSize(cfg.Field.ChunkSize),
		plane.WithCutoff(cfg.Field.Cutoff),
	)
	for _, s := range cfg.Field.Strokes {
		p.PaintCircle(s.X, s.Y, s.Radius)
	}
	p.PaintCircles(c.strokes)
	return cfg, p
}

func fail(msg string, err error) {
	logger.Error(msg, zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}

func printStats(p *plane.Plane, m mesh.Mesh) {
	b := m.Bounds()
	fmt.Printf("Chunks:    %d\n", p.Len())
	fmt.Printf("Vertices:  %d\n", len(m.Vertices))
	fmt.Printf("Triangles: %d\n", m.TriangleCount())
	fmt.Printf("Bounds:    (%.3f, %.3f) .. (%.3f, %.3f)\n", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
}

func writeOBJ(path string, m mesh.Mesh) {
	f, err := os.Create(path)
	if err != nil {
		fail("creating obj file", err)
	}
	defer f.Close()
	if err := export.WriteOBJ(f, m); err != nil {
		fail("writing obj file", err)
	}
	fmt.Printf("Wrote %s\n", path)
}

func cmdMesh(args []string) {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	var c common
	c.register(fs)
	x := fs.Float64("x", 0, "Reference point x")
	y := fs.Float64("y", 0, "Reference point y")
	dist := fs.Float64("dist", 0, "Render distance (default from config)")
	all := fs.Bool("all", false, "Mesh every chunk instead of the viewport")
	objPath := fs.String("obj", "", "Write the mesh as a Wavefront OBJ")
	fs.Parse(args)

	cfg, p := c.setup()
	defer logger.Sync()

	var (
		m   mesh.Mesh
		err error
	)
	if *all {
		m, err = p.MeshAll()
	} else {
		ref := plane.ReferencePoint{
			Position:   mgl32.Vec2{float32(*x), float32(*y)},
			RenderDist: cfg.View.RenderDist,
		}
		if *dist > 0 {
			ref.RenderDist = float32(*dist)
		}
		m, err = p.BuildMesh(ref)
	}
	if err != nil {
		fail("building mesh", err)
	}

	printStats(p, m)
	if *objPath != "" {
		writeOBJ(*objPath, m)
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var c common
	c.register(fs)
	out := fs.String("out", "", "Output directory (default from config)")
	format := fs.String("format", "", "Image format: png or bmp (default from config)")
	fs.Parse(args)

	cfg, p := c.setup()
	defer logger.Sync()

	if *out != "" {
		cfg.Export.OutputDir = *out
	}
	if *format != "" {
		cfg.Export.Format = *format
	}
	e := export.NewExporter(cfg.Export.OutputDir, cfg.Export.Prefix, export.Format(cfg.Export.Format))

	coords := p.Coords()
	if len(coords) == 0 {
		fmt.Println("Nothing painted, no chunks to export")
		return
	}
	for _, coord := range coords {
		ch, _ := p.Chunk(coord)
		path, err := e.ExportChunk(coord.X, coord.Y, ch)
		if err != nil {
			fail("exporting chunk "+coord.String(), err)
		}
		fmt.Printf("  %-10s %s\n", coord, path)
	}
	fmt.Printf("Exported %d chunks\n", len(coords))
}

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	var c common
	c.register(fs)
	objPath := fs.String("obj", "", "Write the mesh as a Wavefront OBJ")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fieldtool import [options] <image>")
		os.Exit(1)
	}

	cfg, _ := c.setup()
	defer logger.Sync()

	ch, err := export.ReadFile(fs.Arg(0))
	if err != nil {
		fail("reading image", err)
	}

	m, err := march.Mesher{Cutoff: cfg.Field.Cutoff}.MeshChunk(ch)
	if err != nil {
		fail("meshing image", err)
	}

	b := m.Bounds()
	fmt.Printf("Image:     %s (%dx%d)\n", fs.Arg(0), ch.Size(), ch.Size())
	fmt.Printf("Vertices:  %d\n", len(m.Vertices))
	fmt.Printf("Triangles: %d\n", m.TriangleCount())
	fmt.Printf("Bounds:    (%.3f, %.3f) .. (%.3f, %.3f)\n", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
	if *objPath != "" {
		writeOBJ(*objPath, m)
	}
}

func cmdCircles(args []string) {
	fs := flag.NewFlagSet("circles", flag.ExitOnError)
	var c common
	c.register(fs)
	levels := fs.Int("levels", 6, "Number of nested circles")
	fs.Parse(args)

	_, p := c.setup()
	defer logger.Sync()

	p.PaintCircles(plane.NestedCircles(*levels))

	m, err := p.MeshAll()
	if err != nil {
		fail("building mesh", err)
	}
	printStats(p, m)
}
