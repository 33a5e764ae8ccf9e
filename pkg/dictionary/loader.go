// Package dictionary reads seed tag lists from plain text files.
//
// Each non-empty line holds a tag name, optionally followed by a tab and a
// use count:
//
//	# languages
//	go	30
//	python	12
//	postgres
//
// Lines starting with '#' are comments. A missing or unparsable count is 1.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/tagcomplete/pkg/index"
	"github.com/charmbracelet/log"
)

// Extension is the file extension Load picks up in directories.
const Extension = ".txt"

// Read parses a tag list from r.
func Read(r io.Reader) ([]index.Tag, error) {
	var tags []index.Tag
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, count, hasCount := strings.Cut(line, "\t")
		uses := 1
		if hasCount {
			n, err := strconv.Atoi(strings.TrimSpace(count))
			if err != nil || n < 0 {
				log.Warnf("Line %d: invalid use count %q for %q, using 1", lineNo, count, name)
			} else {
				uses = n
			}
		}

		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tags = append(tags, index.Tag{Name: name, Uses: uses})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tag list: %w", err)
	}
	return tags, nil
}

// LoadFile reads the tag list at path.
func LoadFile(path string) ([]index.Tag, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tag list %s: %w", path, err)
	}
	defer file.Close()

	tags, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Loaded %d tags from %s", len(tags), path)
	return tags, nil
}

// Load reads a single tag list, or every *.txt list in a directory in name
// order.
func Load(path string) ([]index.Tag, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)

	var all []index.Tag
	for _, f := range files {
		tags, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		all = append(all, tags...)
	}
	return all, nil
}
