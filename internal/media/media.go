// Package media resolves the image assets and the fixed location the bot can
// send.
package media

import (
	"io"
	"os"
	"path/filepath"

	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
)

// Asset is a file under the media directory plus the caption it is sent with.
type Asset struct {
	Name    string
	Caption string
}

// Location is the fixed point sent for location requests.
type Location struct {
	Latitude  float64
	Longitude float64
	Label     string
}

// NewLocation converts the configured coordinates.
func NewLocation(cfg config.LocationConfig) Location {
	return Location{Latitude: cfg.Latitude, Longitude: cfg.Longitude, Label: cfg.Label}
}

// Store reads assets from a directory on disk.
type Store struct {
	dir      string
	logo     Asset
	gallery  []Asset
	personal Asset
}

// NewStore builds a Store from the media configuration. Files are not
// checked here; a missing file is reported when it is needed.
func NewStore(cfg config.MediaConfig) *Store {
	gallery := make([]Asset, 0, len(cfg.Gallery))
	for _, name := range cfg.Gallery {
		gallery = append(gallery, Asset{Name: name, Caption: cfg.GalleryCaption})
	}
	return &Store{
		dir:      cfg.Dir,
		logo:     Asset{Name: cfg.Logo, Caption: cfg.LogoCaption},
		gallery:  gallery,
		personal: Asset{Name: cfg.Personal, Caption: cfg.PersonalCaption},
	}
}

func (s *Store) Logo() Asset     { return s.logo }
func (s *Store) Personal() Asset { return s.personal }

// Gallery returns the gallery in send order.
func (s *Store) Gallery() []Asset {
	out := make([]Asset, len(s.gallery))
	copy(out, s.gallery)
	return out
}

// Exists reports whether name is a regular file in the media directory.
func (s *Store) Exists(name string) bool {
	if name == "" {
		return false
	}
	info, err := os.Stat(s.path(name))
	return err == nil && info.Mode().IsRegular()
}

// Open opens name for reading. The caller closes the returned reader.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	if name == "" {
		return nil, errs.NewMediaError(name, "asset not configured", nil)
	}
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, errs.NewMediaError(name, "failed to open asset", err)
	}
	return f, nil
}

// path keeps name inside the media directory.
func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean("/"+name)))
}
