// Package library builds a catalog from a music folder laid out as
// <root>/<language>/<emotion>/<song>.{mp3,wav,ogg} and keeps it fresh with a
// file system watcher.
package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

// Scanner walks a music library. It implements ports.CatalogSource.
type Scanner struct {
	root            string
	coversDir       string
	coverBaseURL    string
	defaultLanguage string
	probe           DurationProbe
}

// Options configures a Scanner. CoversDir holds <emotion>.png files served
// under CoverBaseURL.
type Options struct {
	CoversDir       string
	CoverBaseURL    string
	DefaultLanguage string
	Probe           DurationProbe
}

func NewScanner(root string, opts Options) *Scanner {
	if opts.Probe == nil {
		opts.Probe = ProbeDuration
	}
	return &Scanner{
		root:            root,
		coversDir:       opts.CoversDir,
		coverBaseURL:    strings.TrimRight(opts.CoverBaseURL, "/"),
		defaultLanguage: opts.DefaultLanguage,
		probe:           opts.Probe,
	}
}

func (s *Scanner) Root() string {
	return s.root
}

// Load scans the library.
func (s *Scanner) Load(ctx context.Context) (*domain.Catalog, error) {
	return s.Scan(ctx)
}

// Scan lists every language directory. Songs in an emotion's own folder are
// used in file name order; when that folder is missing or empty, any audio
// file under the language whose name mentions the emotion is used instead.
// Files that do not yield a valid song are skipped with a warning.
func (s *Scanner) Scan(ctx context.Context) (*domain.Catalog, error) {
	languages, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("library: read %s: %w", s.root, err)
	}

	builder := domain.NewCatalogBuilder(s.defaultLanguage)
	var newest time.Time
	total := 0
	for _, langEntry := range languages {
		if !langEntry.IsDir() || strings.HasPrefix(langEntry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		language := domain.NormalizeLanguage(langEntry.Name())
		files, err := s.listLanguage(filepath.Join(s.root, langEntry.Name()))
		if err != nil {
			return nil, err
		}

		for _, e := range domain.Emotions() {
			for _, f := range files.forEmotion(e) {
				song := s.songFor(e, f)
				if err := builder.Add(language, e, song); err != nil {
					logger.Warn("library: skipping file", logger.String("file", f.rel), logger.ErrorField(err))
					continue
				}
				total++
				if f.modTime.After(newest) {
					newest = f.modTime
				}
			}
		}
	}

	version := fmt.Sprintf("library-%d-%d", total, newest.Unix())
	logger.Info("library scanned",
		logger.String("root", s.root),
		logger.Int("songs", total),
		logger.String("version", version),
	)
	return builder.Build(version), nil
}

type audioFile struct {
	name    string
	rel     string // slash separated, relative to the library root
	abs     string
	modTime time.Time
}

type languageFiles struct {
	byFolder map[domain.Emotion][]audioFile
	all      []audioFile
}

func (s *Scanner) listLanguage(dir string) (*languageFiles, error) {
	out := &languageFiles{byFolder: make(map[domain.Emotion][]audioFile)}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isAudio(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		f := audioFile{name: d.Name(), rel: filepath.ToSlash(rel), abs: p, modTime: info.ModTime()}
		out.all = append(out.all, f)

		// Only files directly inside <language>/<emotion>/ count as folder songs.
		if filepath.Dir(filepath.Dir(p)) == dir {
			if e, err := domain.ParseEmotion(filepath.Base(filepath.Dir(p))); err == nil {
				out.byFolder[e] = append(out.byFolder[e], f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("library: walk %s: %w", dir, err)
	}
	return out, nil
}

func (l *languageFiles) forEmotion(e domain.Emotion) []audioFile {
	if files := l.byFolder[e]; len(files) > 0 {
		return dedupe(files)
	}
	var matches []audioFile
	needle := e.String()
	for _, f := range l.all {
		if strings.Contains(strings.ToLower(f.name), needle) {
			matches = append(matches, f)
		}
	}
	return dedupe(matches)
}

func dedupe(files []audioFile) []audioFile {
	seen := make(map[string]struct{}, len(files))
	out := files[:0:0]
	for _, f := range files {
		title, artist := parseSongName(f.name)
		key := dedupeKey(title, artist)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].rel < out[j].rel })
	return out
}

func (s *Scanner) songFor(e domain.Emotion, f audioFile) domain.Song {
	title, artist := parseSongName(f.name)
	if artist == "" {
		artist = domain.UnknownArtist
	}
	song := domain.Song{
		ID:          f.rel,
		Title:       title,
		Artist:      artist,
		AlbumArtRef: s.coverFor(e),
		PlayRef:     f.rel,
	}
	if ms, err := s.probe(f.abs); err != nil {
		logger.Debug("library: duration probe failed", logger.String("file", f.rel), logger.ErrorField(err))
	} else {
		song.DurationMs = ms
	}
	return song
}

func (s *Scanner) coverFor(e domain.Emotion) string {
	if s.coversDir == "" {
		return ""
	}
	name := e.String() + ".png"
	if _, err := os.Stat(filepath.Join(s.coversDir, name)); err != nil {
		return ""
	}
	if s.coverBaseURL == "" {
		return name
	}
	return s.coverBaseURL + "/" + name
}
