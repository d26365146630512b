package alphabet

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/nback/internal/model"
)

// Resolve turns sound set names into sets. Names that are not built in are
// looked up as <dir>/<name>.txt.
func Resolve(names []string, dir string) ([]model.SoundSet, error) {
	if len(names) == 0 {
		names = []string{DefaultSoundSet}
	}
	sets := make([]model.SoundSet, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		if set, ok := SoundSet(name); ok {
			sets = append(sets, set)
			continue
		}
		set, err := LoadSet(filepath.Join(dir, name+".txt"))
		if err != nil {
			return nil, fmt.Errorf("unknown sound set %q: %w", name, err)
		}
		sets = append(sets, set)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no sound sets configured")
	}
	return sets, nil
}

// LoadSet reads one symbol per line from the provided file path. The set is
// named after the file.
func LoadSet(path string) (model.SoundSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.SoundSet{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only sound set.
			_ = cerr
		}
	}()

	var symbols []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		symbols = append(symbols, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return model.SoundSet{}, err
	}
	symbols = Normalize(symbols)
	if len(symbols) < 2 {
		return model.SoundSet{}, fmt.Errorf("sound set needs at least 2 distinct symbols")
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return model.SoundSet{Name: name, Symbols: symbols}, nil
}

// Normalize trims symbols, drops blanks and comments, and removes duplicates
// while keeping the first occurrence order.
func Normalize(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
