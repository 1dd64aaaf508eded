// Package manifest reads audio corpus listings.
//
// A manifest (wav.scp) maps clip names to audio paths, one "name path"
// pair per line. A plain audio path is also accepted and becomes a single
// synthetic entry.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ManifestSuffix marks a file as a name/path listing rather than raw audio.
const ManifestSuffix = ".scp"

// SingleClipName is the placeholder name used when the input is a bare
// audio path instead of a manifest.
const SingleClipName = "test"

// Entry is one clip in a manifest. Paths are not checked for existence
// here; the audio-loading stage owns that.
type Entry struct {
	Name string
	Path string
}

// MalformedLineError reports a manifest line that does not split into
// exactly two whitespace-separated tokens. The whole parse aborts on the
// first such line; skipping it would silently desynchronize names from
// paths.
type MalformedLineError struct {
	File string
	Line int
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s:%d: malformed manifest line %q (want \"name path\")", e.File, e.Line, e.Text)
}

// Parse normalizes the two accepted input shapes into an ordered entry
// list. If audioIn ends in .scp it is read as a manifest, keeping at most
// maxEntries lines (maxEntries <= 0 means unlimited; lines past the cap
// are never read). Any other path yields a single entry named "test".
func Parse(audioIn string, maxEntries int) ([]Entry, error) {
	if !strings.HasSuffix(audioIn, ManifestSuffix) {
		return []Entry{{Name: SingleClipName, Path: audioIn}}, nil
	}

	f, err := os.Open(audioIn)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	line := 0
	for maxEntries <= 0 || len(entries) < maxEntries {
		if !scanner.Scan() {
			break
		}
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			return nil, &MalformedLineError{File: audioIn, Line: line, Text: scanner.Text()}
		}
		entries = append(entries, Entry{Name: fields[0], Path: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return entries, nil
}

// Split returns the parallel name and path sequences in manifest order.
func Split(entries []Entry) (names, paths []string) {
	names = make([]string, len(entries))
	paths = make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		paths[i] = e.Path
	}
	return names, paths
}

// ParseTriple splits a "path,name,type" data argument, the form used by
// the batch decoding driver to describe one input stream.
func ParseTriple(s string) (path, name, typ string, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("data argument %q must be path,name,type", s)
	}
	return parts[0], parts[1], parts[2], nil
}
