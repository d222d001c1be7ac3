// Package loader compiles an organizer directory into a model.OrganizerConfiguration
// and writes one back out. The directory shape is declared once with filetree
// nodes; the per-entity conversions live next to it.
package loader

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/papapumpkin/lineup/internal/convert"
	"github.com/papapumpkin/lineup/internal/filetree"
	"github.com/papapumpkin/lineup/internal/ident"
	"github.com/papapumpkin/lineup/internal/model"
)

// Options tunes how an organizer directory is loaded.
type Options struct {
	// OrganizerID overrides the organizer ID from organizer-info.yml.
	OrganizerID string
	// SourceURL overrides the url field from organizer-info.yml.
	SourceURL string
	// Logger receives warnings such as time zone fallbacks. Nil discards them.
	Logger *slog.Logger
	// Concurrency bounds concurrent file reads per directory. Zero uses the
	// filetree default.
	Concurrency int
}

type organizerSource struct {
	Path string
	File organizerFile
}

type organizerTree = filetree.Tuple2[organizerSource, []filetree.Named[eventTree]]

// Schema returns the node describing a whole organizer directory.
func Schema(logger *slog.Logger) filetree.Node[model.OrganizerConfiguration] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	events := convert.Each(eventConversion(logger))
	return filetree.Map(
		filetree.Seq2(
			filetree.Map(filetree.File("organizer-info", "yml", "yaml"), organizerSourceConversion()),
			filetree.ManyDirs(eventNode()),
		),
		convert.Func(
			func(t organizerTree) (model.OrganizerConfiguration, error) {
				evs, err := events.Apply(t.V2)
				if err != nil {
					return model.OrganizerConfiguration{}, err
				}
				f := t.V1.File
				org := model.Organizer{
					ID:           model.OrganizerID(strings.TrimSpace(f.ID)),
					SourceURL:    f.URL,
					Name:         strings.TrimSpace(f.Name),
					ImageURL:     f.ImageURL,
					IconImageURL: f.IconImageURL,
				}
				if org.ID.IsZero() && org.Name != "" {
					org.ID = ident.Stabilize[model.OrganizerTag]("", org.Name)
				}
				return model.OrganizerConfiguration{Info: org, Events: evs}, nil
			},
			func(cfg model.OrganizerConfiguration) (organizerTree, error) {
				evs, err := events.Unapply(cfg.Events)
				if err != nil {
					return organizerTree{}, err
				}
				f := organizerFile{
					ID:           cfg.Info.ID.String(),
					Name:         cfg.Info.Name,
					URL:          cfg.Info.SourceURL,
					ImageURL:     cfg.Info.ImageURL,
					IconImageURL: cfg.Info.IconImageURL,
				}
				return organizerTree{V1: organizerSource{File: f}, V2: evs}, nil
			},
		),
	)
}

func organizerSourceConversion() convert.Conversion[filetree.Leaf, organizerSource] {
	y := convert.YAMLFile[organizerFile]()
	return convert.Func(
		func(leaf filetree.Leaf) (organizerSource, error) {
			f, err := y.Apply(leaf.Data)
			if err != nil {
				return organizerSource{}, convert.WithPath(err, leaf.Path)
			}
			return organizerSource{Path: leaf.Path, File: f}, nil
		},
		func(s organizerSource) (filetree.Leaf, error) {
			data, err := y.Unapply(s.File)
			return filetree.Leaf{Data: data}, err
		},
	)
}

// Load reads the organizer directory at root. Any structural or decode error
// aborts the whole load; there is no partial result.
func Load(fs afero.Fs, root string, opts Options) (model.OrganizerConfiguration, error) {
	var readOpts []filetree.ReaderOption
	if opts.Concurrency > 0 {
		readOpts = append(readOpts, filetree.WithConcurrency(opts.Concurrency))
	}
	cfg, err := filetree.Read(fs, root, Schema(opts.Logger), readOpts...)
	if err != nil {
		return model.OrganizerConfiguration{}, err
	}

	if id := strings.TrimSpace(opts.OrganizerID); id != "" {
		cfg.Info.ID = model.OrganizerID(id)
	}
	if cfg.Info.ID.IsZero() {
		cfg.Info.ID = ident.Stabilize[model.OrganizerTag]("", filepath.Base(filepath.Clean(root)))
	}
	if opts.SourceURL != "" {
		cfg.Info.SourceURL = opts.SourceURL
	}
	return cfg, nil
}

// Write writes cfg as an organizer directory at root.
func Write(fs afero.Fs, root string, cfg model.OrganizerConfiguration) error {
	return filetree.Write(fs, root, Schema(nil), cfg)
}

// EventLocation reads the time zone declared in the event-info file of the
// event directory at dir. ok is false when the zone does not resolve, in which
// case loc is nil.
func EventLocation(fs afero.Fs, dir string) (loc *time.Location, ok bool, err error) {
	node := filetree.Map(filetree.File("event-info", "yml", "yaml"), eventSourceConversion())
	src, err := filetree.Read(fs, dir, node)
	if err != nil {
		return nil, false, err
	}
	loc, ok = ResolveLocation(src.File.TimeZone)
	if !ok {
		return nil, false, nil
	}
	return loc, true, nil
}
