package texture

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Info describes an image file without decoding its pixels.
type Info struct {
	Path   string `yaml:"path" json:"path" msgpack:"path"`
	Format string `yaml:"format" json:"format" msgpack:"format"`
	Width  int    `yaml:"width" json:"width" msgpack:"width"`
	Height int    `yaml:"height" json:"height" msgpack:"height"`
}

type configDecoder struct {
	format string
	decode func(io.Reader) (image.Config, error)
}

// Selected by extension: TGA has no signature to sniff.
var decoders = map[string]configDecoder{
	".png":  {"png", png.DecodeConfig},
	".jpg":  {"jpeg", jpeg.DecodeConfig},
	".jpeg": {"jpeg", jpeg.DecodeConfig},
	".gif":  {"gif", gif.DecodeConfig},
	".bmp":  {"bmp", bmp.DecodeConfig},
	".webp": {"webp", webp.DecodeConfig},
	".tif":  {"tiff", tiff.DecodeConfig},
	".tiff": {"tiff", tiff.DecodeConfig},
	".tga":  {"tga", tga.DecodeConfig},
	".dds":  {"dds", decodeDDSConfig},
}

// Inspect reads the format and dimensions of the image at path.
func Inspect(path string) (Info, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Info{}, fmt.Errorf("probing texture %s: unsupported format", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("probing texture: %w", err)
	}
	defer f.Close()

	cfg, err := dec.decode(bufio.NewReader(f))
	if err != nil {
		return Info{}, fmt.Errorf("probing texture %s: %w", filepath.Base(path), err)
	}
	return Info{Path: path, Format: dec.format, Width: cfg.Width, Height: cfg.Height}, nil
}

// DirectDraw Surface header fields used for probing.
const (
	ddsHeaderLen = 4 + 124
	ddsHeightAt  = 12
	ddsWidthAt   = 16
)

// decodeDDSConfig reads the dimensions from a DDS header. Pixel data is
// block-compressed and never decoded here.
func decodeDDSConfig(r io.Reader) (image.Config, error) {
	var hdr [ddsHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return image.Config{}, fmt.Errorf("dds: reading header: %w", err)
	}
	if string(hdr[:4]) != "DDS " {
		return image.Config{}, fmt.Errorf("dds: bad magic")
	}
	le := func(off int) int {
		return int(uint32(hdr[off]) | uint32(hdr[off+1])<<8 | uint32(hdr[off+2])<<16 | uint32(hdr[off+3])<<24)
	}
	return image.Config{Width: le(ddsWidthAt), Height: le(ddsHeightAt)}, nil
}
