// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package reader

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"unicode/utf8"
)

// Open errors for the EPUB SourceReader, mirroring the archive / XML / IO /
// format-level failure modes a container-format reader can hit.
var (
	ErrArchive     = errors.New("epub: not a valid zip archive")
	ErrXML         = errors.New("epub: malformed container or package document")
	ErrInvalidEpub = errors.New("epub: missing container.xml or package document")
	ErrNoContent   = errors.New("epub: package has an empty spine")
)

type epubContainer struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Manifest struct {
		Items []struct {
			ID   string `xml:"id,attr"`
			Href string `xml:"href,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type spineEntry struct {
	id   string
	path string
}

// EpubReader is the SourceReader variant for EPUB archives: it parses the
// container and package manifest once at open time, then streams each
// spine item's text in document order.
type EpubReader struct {
	zr    *zip.Reader
	spine []spineEntry
	index int // index of the spine item currently cached in contentChars

	previousContentID string

	contentChars []rune
	charIndex    int

	currentFile    string
	currentChapter string
}

// OpenEpub parses the archive and package manifest behind r (size bytes
// long). It does not read any chapter content yet — chapters are loaded
// lazily, one at a time, as Read drains them.
func OpenEpub(r io.ReaderAt, size int64) (*EpubReader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}

	containerFile, err := zr.Open("META-INF/container.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEpub, err)
	}
	var container epubContainer
	decodeErr := xml.NewDecoder(containerFile).Decode(&container)
	containerFile.Close()
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrXML, decodeErr)
	}
	if len(container.Rootfiles) == 0 {
		return nil, ErrInvalidEpub
	}

	opfPath := container.Rootfiles[0].FullPath
	opfFile, err := zr.Open(opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: package document %q: %v", ErrInvalidEpub, opfPath, err)
	}
	var pkg opfPackage
	decodeErr = xml.NewDecoder(opfFile).Decode(&pkg)
	opfFile.Close()
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrXML, decodeErr)
	}

	manifestByID := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		manifestByID[item.ID] = item.Href
	}

	base := path.Dir(opfPath)
	spine := make([]spineEntry, 0, len(pkg.Spine.ItemRefs))
	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := manifestByID[ref.IDRef]
		if !ok {
			continue
		}
		spine = append(spine, spineEntry{id: ref.IDRef, path: path.Join(base, href)})
	}
	if len(spine) == 0 {
		return nil, ErrNoContent
	}

	return &EpubReader{zr: zr, spine: spine, index: -1}, nil
}

func (r *EpubReader) readSpineItem(p string) ([]byte, error) {
	f, err := r.zr.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// advance loads the next non-empty spine item into contentChars. Returns
// io.EOF when the spine is exhausted or a looping manifest is detected.
func (r *EpubReader) advance() error {
	for {
		r.index++
		if r.index >= len(r.spine) {
			return io.EOF
		}
		entry := r.spine[r.index]

		// Termination safeguard: a malformed manifest that repeats the
		// same spine id back to back would otherwise loop forever.
		if entry.id == r.previousContentID {
			return io.EOF
		}

		data, err := r.readSpineItem(entry.path)
		if err != nil {
			return fmt.Errorf("epub: reading spine item %s: %w", entry.path, err)
		}

		r.previousContentID = entry.id
		r.currentFile = entry.path
		r.currentChapter = entry.path
		r.contentChars = []rune(string(data))
		r.charIndex = 0

		if len(r.contentChars) > 0 {
			return nil
		}
		// Empty chapter: keep scanning instead of signalling EOF early.
	}
}

// Read implements io.Reader, filling buf with UTF-8 bytes of the current
// spine item's text, advancing across chapters as needed. One char is
// encoded at a time so a partial code point never crosses a Read boundary.
func (r *EpubReader) Read(buf []byte) (int, error) {
	if r.charIndex >= len(r.contentChars) {
		if err := r.advance(); err != nil {
			return 0, err
		}
	}

	i := 0
	var tmp [utf8.UTFMax]byte
	for i < len(buf) && r.charIndex < len(r.contentChars) {
		w := utf8.EncodeRune(tmp[:], r.contentChars[r.charIndex])
		if i+w > len(buf) {
			break
		}
		copy(buf[i:], tmp[:w])
		i += w
		r.charIndex++
	}

	return i, nil
}

// CurrentMetadata implements MetaRead: {file, chapter} of the spine item
// currently being read.
func (r *EpubReader) CurrentMetadata() map[string]any {
	return map[string]any{
		"file":    r.currentFile,
		"chapter": r.currentChapter,
	}
}
