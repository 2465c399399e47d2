// Package store persists editor sessions on disk: a TOML manifest listing
// the documents and one PNG file per buffer layer.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/egtoney/osprite"
	"github.com/egtoney/osprite/imop"
	"github.com/google/uuid"
)

// ManifestFile is the name of the session list inside the store directory.
const ManifestFile = "sessions.toml"

type manifest struct {
	Sessions []entry `toml:"session"`
}

type entry struct {
	ID        string `toml:"id"`
	Name      string `toml:"name"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Layers    int    `toml:"layers"`
	Zoom      int    `toml:"zoom"`
	Tool      string `toml:"tool"`
	Primary   string `toml:"primary"`
	Secondary string `toml:"secondary"`
}

// FileStore keeps sessions in a directory. Layer images are only rewritten
// when their revision changed since the last save or a selection floats.
type FileStore struct {
	Dir string

	saved map[string]uint64
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, saved: make(map[string]uint64)}
}

func (fs *FileStore) layerPath(id string, layer int) string {
	return filepath.Join(fs.Dir, fmt.Sprintf("%s-%d.png", id, layer))
}

// Load reads the stored sessions. A missing manifest yields no sessions.
func (fs *FileStore) Load() ([]*osprite.Session, error) {
	var m manifest
	if _, err := toml.DecodeFile(filepath.Join(fs.Dir, ManifestFile), &m); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("couldn't read session manifest: %w", err)
	}

	sessions := make([]*osprite.Session, 0, len(m.Sessions))
	for _, e := range m.Sessions {
		s, err := fs.load(e)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", e.ID, err)
		}
		sessions = append(sessions, s)
	}
	osprite.Logger().Info("sessions loaded", "dir", fs.Dir, "count", len(sessions))
	return sessions, nil
}

func (fs *FileStore) load(e entry) (*osprite.Session, error) {
	if _, err := uuid.Parse(e.ID); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	buf, err := osprite.NewImageBuffer(e.Width, e.Height, e.Layers)
	if err != nil {
		return nil, err
	}
	for i, l := range buf.Layers {
		data, err := os.ReadFile(fs.layerPath(e.ID, i))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		src := osprite.SliceFromImage(img)
		if src.Width != e.Width || src.Height != e.Height {
			return nil, fmt.Errorf("layer %d: size %dx%d does not match %dx%d", i, src.Width, src.Height, e.Width, e.Height)
		}
		copy(l.Pix, src.Pix)
	}

	opts := osprite.DefaultOptions()
	opts.Name, opts.Width, opts.Height, opts.Zoom = e.Name, e.Width, e.Height, e.Zoom
	if tool, err := osprite.ParseTool(e.Tool); err == nil {
		opts.Tool = tool
	}
	if c, ok := imop.ParseHex(e.Primary); ok {
		opts.Primary = c
	}
	if c, ok := imop.ParseHex(e.Secondary); ok {
		opts.Secondary = c
	}
	s := osprite.RestoreSession(e.ID, opts, buf)
	for i := range buf.Layers {
		fs.saved[fs.key(e.ID, i)] = buf.Revision(i)
	}
	return s, nil
}

func (fs *FileStore) key(id string, layer int) string {
	return fmt.Sprintf("%s/%d", id, layer)
}

// Save writes the manifest and the layers that changed, then removes the
// files of sessions that are no longer listed.
func (fs *FileStore) Save(sessions []*osprite.Session) error {
	if err := os.MkdirAll(fs.Dir, 0700); err != nil {
		return fmt.Errorf("couldn't create store directory: %w", err)
	}

	var m manifest
	keep := make(map[string]bool)
	for _, s := range sessions {
		buf := s.Buffer()
		m.Sessions = append(m.Sessions, entry{
			ID:        s.ID,
			Name:      s.Name,
			Width:     buf.Width,
			Height:    buf.Height,
			Layers:    len(buf.Layers),
			Zoom:      s.Display().Zoom,
			Tool:      s.Tool().String(),
			Primary:   s.Primary().Hex(),
			Secondary: s.Secondary().Hex(),
		})
		keep[s.ID] = true

		for i := range buf.Layers {
			if err := fs.saveLayer(s, i); err != nil {
				return err
			}
		}
	}

	var out bytes.Buffer
	if err := toml.NewEncoder(&out).Encode(m); err != nil {
		return fmt.Errorf("couldn't encode session manifest: %w", err)
	}
	if err := writeFile(filepath.Join(fs.Dir, ManifestFile), out.Bytes()); err != nil {
		return err
	}
	return fs.prune(keep)
}

func (fs *FileStore) saveLayer(s *osprite.Session, layer int) error {
	rev := s.Buffer().Revision(layer)
	k := fs.key(s.ID, layer)
	path := fs.layerPath(s.ID, layer)
	if last, ok := fs.saved[k]; ok && last == rev {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}

	// Layer 0 is stored flattened so a floating selection is not lost.
	// Such a file is never reused since the selection may go away
	// without a revision change.
	img := s.Buffer().Image(layer)
	flattened := layer == 0 && s.HasSelection()
	if flattened {
		img = s.Image()
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return fmt.Errorf("couldn't encode layer %d of %s: %w", layer, s.ID, err)
	}
	if err := writeFile(path, out.Bytes()); err != nil {
		return err
	}
	if flattened {
		delete(fs.saved, k)
	} else {
		fs.saved[k] = rev
	}
	osprite.Logger().Debug("layer saved", "id", s.ID, "layer", layer, "revision", rev)
	return nil
}

func (fs *FileStore) prune(keep map[string]bool) error {
	files, err := filepath.Glob(filepath.Join(fs.Dir, "*-*.png"))
	if err != nil {
		return err
	}
	for _, f := range files {
		base := filepath.Base(f)
		i := strings.LastIndexByte(base, '-')
		id := base[:i]
		if _, err := uuid.Parse(id); err != nil || keep[id] {
			continue
		}
		if err := os.Remove(f); err != nil {
			return err
		}
		for k := range fs.saved {
			if strings.HasPrefix(k, id+"/") {
				delete(fs.saved, k)
			}
		}
	}
	return nil
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
