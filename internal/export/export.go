// Package export writes density chunks to grayscale images and reads them back.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/marchfield/pkg/field"
)

// ErrNotSquare is returned when importing an image whose sides differ.
var ErrNotSquare = errors.New("export: image is not square")

// Format is an image encoding supported by the exporter.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// Grayscale renders a chunk one pixel per sample. Empty samples are white.
func Grayscale(c *field.Chunk) *image.Gray {
	n := c.Size()
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y, row := range c.Rows() {
		for x, v := range row {
			img.Pix[y*img.Stride+x] = toByte(v)
		}
	}
	return img
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

// Chunk converts a square image back into a chunk, reading luminance.
func Chunk(img image.Image) (*field.Chunk, error) {
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return nil, fmt.Errorf("%dx%d: %w", b.Dx(), b.Dy(), ErrNotSquare)
	}
	rows := make([][]float32, b.Dy())
	for y := range rows {
		rows[y] = make([]float32, b.Dx())
		for x := range rows[y] {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			rows[y][x] = float32(g.Y) / 255
		}
	}
	return field.FromRows(rows)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Decode reads a PNG or BMP image from r as a chunk.
func Decode(r io.Reader) (*field.Chunk, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return Chunk(img)
}

// ReadFile loads a chunk from an image file.
func ReadFile(path string) (*field.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Exporter saves chunks as images in an output directory.
type Exporter struct {
	outputDir string
	prefix    string
	format    Format
}

// NewExporter creates an exporter. An empty format means PNG.
func NewExporter(outputDir, prefix string, format Format) *Exporter {
	if format == "" {
		format = FormatPNG
	}
	return &Exporter{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
	}
}

// Filename returns the path a chunk at (x, y) is written to.
func (e *Exporter) Filename(x, y int32) string {
	name := fmt.Sprintf("%s_%d_%d.%s", e.prefix, x, y, e.format)
	if e.outputDir != "" {
		name = filepath.Join(e.outputDir, name)
	}
	return name
}

// ExportChunk writes the chunk at (x, y) and returns the file path.
func (e *Exporter) ExportChunk(x, y int32, c *field.Chunk) (string, error) {
	if e.outputDir != "" {
		if err := os.MkdirAll(e.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := e.Filename(x, y)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, Grayscale(c), e.format); err != nil {
		return "", fmt.Errorf("encoding %s: %w", e.format, err)
	}
	return filename, nil
}
