// Package texture locates the image files a CRF material refers to and reads
// their dimensions.
package texture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/jabia-crf/internal/logger"
	"github.com/Faultbox/jabia-crf/pkg/encoding"
)

// ErrNotFound is returned when no candidate directory holds the texture.
var ErrNotFound = errors.New("texture not found")

// Resolver maps texture names to files. Names are matched against file stems
// ignoring case; the first match in candidate order wins.
type Resolver struct {
	SearchDirs []string // Searched after the directories derived from the CRF path
	Extensions []string // Accepted extensions with leading dot; empty accepts any

	cache *listingCache
}

// NewResolver returns a Resolver with normalized extensions.
func NewResolver(searchDirs, extensions []string) *Resolver {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return &Resolver{SearchDirs: searchDirs, Extensions: exts, cache: newListingCache()}
}

// Refresh forgets cached directory listings.
func (r *Resolver) Refresh() {
	if r.cache != nil {
		r.cache.Clear()
	}
}

// Candidates returns the directories searched for textures of crfPath: the
// file's own directory, the textures tree next to it, then SearchDirs.
func (r *Resolver) Candidates(crfPath string) []string {
	dir := filepath.Dir(crfPath)
	parent := filepath.Dir(dir)
	dirs := []string{
		dir,
		filepath.Join(parent, "textures"),
		filepath.Join(parent, "textures", "items"),
		filepath.Join(parent, "textures", "interface"),
		filepath.Join(parent, "textures", "characters"),
	}
	return append(dirs, r.SearchDirs...)
}

// Resolve finds the file for the texture name referenced by crfPath.
func (r *Resolver) Resolve(crfPath, name string) (string, error) {
	stem := encoding.TextureName(strings.TrimRight(name, "\x00"))
	if stem == "" {
		return "", fmt.Errorf("resolving texture: empty name")
	}

	for _, dir := range r.Candidates(crfPath) {
		if path, ok := r.lookup(dir, stem); ok {
			logger.Debug("texture resolved", zap.String("name", stem), zap.String("path", path))
			return path, nil
		}
	}
	logger.Debug("texture not found", zap.String("name", stem), zap.String("crf", crfPath))
	return "", fmt.Errorf("%w: %s", ErrNotFound, stem)
}

// lookup scans dir in name order for stem.*. Missing directories are skipped.
func (r *Resolver) lookup(dir, stem string) (string, bool) {
	var entries []os.DirEntry
	if r.cache != nil {
		entries = r.cache.ReadDir(dir)
	} else {
		entries, _ = os.ReadDir(dir)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext == "" || !strings.EqualFold(strings.TrimSuffix(name, ext), stem) {
			continue
		}
		if r.accepts(ext) {
			return filepath.Join(dir, name), true
		}
	}
	return "", false
}

func (r *Resolver) accepts(ext string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	ext = strings.ToLower(ext)
	for _, want := range r.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
