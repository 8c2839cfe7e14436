// crftool converts JA:BiA .crf mesh files to and from editable scene documents.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/jabia-crf/internal/codec"
	"github.com/Faultbox/jabia-crf/internal/config"
	"github.com/Faultbox/jabia-crf/internal/logger"
	"github.com/Faultbox/jabia-crf/internal/scene"
	"github.com/Faultbox/jabia-crf/internal/texture"
	"github.com/Faultbox/jabia-crf/pkg/crf"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fail(err)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(cfg, args)
	case "decode", "d":
		err = cmdDecode(cfg, args)
	case "encode", "e":
		err = cmdEncode(cfg, args)
	case "verify":
		err = cmdVerify(cfg, args)
	case "textures", "tex":
		err = cmdTextures(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fail(err)
	}
}

func printUsage() {
	fmt.Println(`crftool - JA:BiA .crf mesh utility

Usage:
  crftool [global options] <command> [options]

Global options:
  -config <file>    Config file (default: ./crftool.yaml or user config dir)
  -debug            Enable debug logging
  -log-file <file>  Also write logs to this file
  -format <name>    Document format: yaml, json or msgpack

Commands:
  info <file.crf>                    Show header, meshes and materials
  decode [-o out] <file.crf>         Convert a CRF file to a scene document
  encode [-o out] <document>         Build a CRF file from a scene document
  verify <file.crf>...               Check quantization against sample files
  textures <file.crf>                Locate and inspect referenced textures
  config [-save | -o path]           Print (or save) the effective config

Examples:
  crftool info weapon.crf
  crftool -format json decode weapon.crf
  crftool encode -o weapon.crf weapon.yaml
  crftool verify data/meshes/*.crf`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func decoder(cfg *config.Config) *crf.Decoder {
	return crf.NewDecoder(cfg.Quantization)
}

func cmdInfo(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: crftool info <file.crf>")
	}

	f, err := decoder(cfg).ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}

	h := f.Header
	fmt.Printf("File:        %s\n", fs.Arg(0))
	fmt.Printf("Version:     %d\n", h.Version)
	fmt.Printf("Object type: %d\n", h.ObjectType)
	fmt.Printf("Magics:      sub=0x%04X format=0x%04X\n", h.SubMagic, h.FormatMagic)
	fmt.Printf("Bounds:      %v - %v\n", h.BBox.Min, h.BBox.Max)
	fmt.Printf("Meshes:      %d (%d vertices, %d faces)\n", len(f.Meshes), f.GetTotalVertexCount(), f.GetTotalFaceCount())
	fmt.Printf("Trailers:    0x%X (%s), 0x%X (%s)\n",
		h.Trailer1Offset, present(f.Trailer1 != nil), h.Trailer2Offset, present(f.Trailer2 != nil))
	fmt.Println()

	for i := range f.Meshes {
		m := &f.Meshes[i]
		fmt.Printf("Mesh %d: %d vertices, %d faces\n", i, m.VertexCount, len(m.Faces))
		fmt.Printf("  Bounds:   %v - %v\n", m.BBox.Min, m.BBox.Max)
		fmt.Printf("  Diffuse:  %s\n", m.Material.Diffuse)
		fmt.Printf("  Normal:   %s\n", m.Material.Normal)
		if m.Material.Specular != "" {
			fmt.Printf("  Specular: %s\n", m.Material.Specular)
		}
		for _, c := range m.Material.SpecularColors {
			fmt.Printf("  Color:    %.3f %.3f %.3f\n", c[0], c[1], c[2])
		}
	}
	return nil
}

func present(ok bool) string {
	if ok {
		return "ok"
	}
	return "missing"
}

func cmdDecode(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	output := fs.String("o", "", "Output path (format inferred from extension)")
	noTextures := fs.Bool("no-textures", false, "Skip texture lookup")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: crftool decode [-o out] <file.crf>")
	}
	input := fs.Arg(0)

	f, err := decoder(cfg).ParseFile(input)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	doc := scene.FromFile(f, cfg.Quantization, base)

	if !*noTextures {
		r := texture.NewResolver(cfg.Textures.SearchDirs, cfg.Textures.Extensions)
		for i := range doc.Objects {
			doc.Objects[i].Material.Paths = resolvePaths(r, input, doc.Objects[i].Material)
		}
	}

	path := *output
	if path == "" {
		c, err := codec.ForName(cfg.Output.Format)
		if err != nil {
			return err
		}
		path = strings.TrimSuffix(input, filepath.Ext(input)) + c.Ext()
	}
	if err := doc.WriteFile(path); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	logger.Info("decoded", zap.String("input", input), zap.String("output", path), zap.Int("objects", len(doc.Objects)))
	fmt.Printf("Decoded: %s -> %s (%d objects)\n", input, path, len(doc.Objects))
	return nil
}

// resolvePaths looks up each texture role of mat. Missing files are logged and
// left out.
func resolvePaths(r *texture.Resolver, crfPath string, mat scene.Material) map[string]string {
	roles := map[string]string{
		"diffuse":  mat.Diffuse,
		"normal":   mat.Normal,
		"specular": mat.Specular,
	}
	paths := make(map[string]string)
	for role, name := range roles {
		if name == "" {
			continue
		}
		path, err := r.Resolve(crfPath, name)
		if err != nil {
			logger.Warn("texture not found", zap.String("role", role), zap.String("name", name))
			continue
		}
		paths[role] = path
	}
	if len(paths) == 0 {
		return nil
	}
	return paths
}

func cmdEncode(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	output := fs.String("o", "", "Output .crf path")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: crftool encode [-o out] <document>")
	}
	input := fs.Arg(0)

	doc, err := scene.ReadFile(input)
	if err != nil {
		return err
	}
	if doc.ObjectType == 0 {
		doc.ObjectType = cfg.Export.ObjectType
	}
	if doc.SubMagic == 0 {
		doc.SubMagic = cfg.Export.SubMagic
	}
	if doc.FormatMagic == 0 {
		doc.FormatMagic = cfg.Export.FormatMagic
	}

	f, err := crf.Build(doc.ExportInput(), cfg.Quantization)
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + ".crf"
	}
	if err := crf.WriteFile(path, f); err != nil {
		return err
	}

	logger.Info("encoded", zap.String("input", input), zap.String("output", path), zap.Int("meshes", len(f.Meshes)))
	fmt.Printf("Encoded: %s -> %s (%d meshes, %d vertices)\n", input, path, len(f.Meshes), f.GetTotalVertexCount())
	return nil
}

func cmdVerify(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: crftool verify <file.crf>...")
	}

	mismatches := make(map[string]int)
	vertices := 0
	for _, path := range fs.Args() {
		f, err := decoder(cfg).ParseFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for i := range f.Meshes {
			for _, v := range f.Meshes[i].Vertices.Vertices() {
				vertices++
				for _, name := range cfg.Quantization.Verify(v.Raw) {
					mismatches[name]++
				}
			}
		}
	}

	fmt.Printf("Files:    %d\n", fs.NArg())
	fmt.Printf("Vertices: %d\n", vertices)
	if len(mismatches) == 0 {
		fmt.Println("All channels round-trip exactly")
		return nil
	}

	channels := make([]string, 0, len(mismatches))
	for name := range mismatches {
		channels = append(channels, name)
	}
	sort.Strings(channels)
	fmt.Println("Mismatched channels:")
	for _, name := range channels {
		fmt.Printf("  %-14s %d\n", name, mismatches[name])
	}
	return fmt.Errorf("quantization does not reproduce %d channels", len(channels))
}

func cmdTextures(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("textures", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: crftool textures <file.crf>")
	}
	input := fs.Arg(0)

	f, err := decoder(cfg).ParseFile(input)
	if err != nil {
		return err
	}

	r := texture.NewResolver(cfg.Textures.SearchDirs, cfg.Textures.Extensions)
	missing := 0
	for i := range f.Meshes {
		mat := f.Meshes[i].Material
		fmt.Printf("Mesh %d:\n", i)
		for _, name := range []string{mat.Diffuse, mat.Normal, mat.Specular} {
			if name == "" {
				continue
			}
			path, err := r.Resolve(input, name)
			if err != nil {
				fmt.Printf("  %-24s not found\n", name)
				missing++
				continue
			}
			info, err := texture.Inspect(path)
			if err != nil {
				fmt.Printf("  %-24s %s (unreadable: %v)\n", name, path, err)
				continue
			}
			fmt.Printf("  %-24s %s (%s %dx%d)\n", name, path, info.Format, info.Width, info.Height)
		}
	}

	if missing > 0 {
		fmt.Fprintf(os.Stderr, "\n(%d textures not found)\n", missing)
	}
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Save to the user config directory")
	output := fs.String("o", "", "Save to this path")
	fs.Parse(args)

	switch {
	case *output != "":
		if err := cfg.SaveTo(*output); err != nil {
			return err
		}
		fmt.Printf("Saved: %s\n", *output)
		return nil
	case *save:
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Saved: %s\n", filepath.Join(config.ConfigDir(), config.FileName))
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}
