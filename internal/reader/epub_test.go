package reader

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildTestEpub(t *testing.T, chapters map[string]string, spineOrder []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writeFile := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	writeFile("META-INF/container.xml", `<?xml version="1.0"?>
<container><rootfiles><rootfile full-path="OEBPS/content.opf"/></rootfiles></container>`)

	var manifest, spine string
	for _, id := range spineOrder {
		manifest += `<item id="` + id + `" href="` + id + `.xhtml"/>`
		spine += `<itemref idref="` + id + `"/>`
	}
	writeFile("OEBPS/content.opf", `<?xml version="1.0"?>
<package><manifest>`+manifest+`</manifest><spine>`+spine+`</spine></package>`)

	for id, content := range chapters {
		writeFile("OEBPS/"+id+".xhtml", content)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestEpubReaderWalksSpineInOrder(t *testing.T) {
	chapters := map[string]string{
		"ch1": "<html><body><p>First</p></body></html>",
		"ch2": "<html><body><p>Second</p></body></html>",
	}
	data := buildTestEpub(t, chapters, []string{"ch1", "ch2"})

	ep, err := OpenEpub(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenEpub: %v", err)
	}

	xr := NewXMLReader(ep)
	got, err := drainXML(t, xr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "First Second "
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEpubReaderMissingContainerIsInvalid(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("nothing.txt")
	w.Write([]byte("x"))
	zw.Close()

	_, err := OpenEpub(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err == nil {
		t.Fatal("expected error for missing container.xml")
	}
}

func TestEpubReaderMetadataTracksCurrentChapter(t *testing.T) {
	chapters := map[string]string{
		"ch1": "<html><body><p>First</p></body></html>",
	}
	data := buildTestEpub(t, chapters, []string{"ch1"})

	ep, err := OpenEpub(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenEpub: %v", err)
	}

	buf := make([]byte, 1)
	if _, err := ep.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}

	meta := ep.CurrentMetadata()
	if meta["chapter"] != "OEBPS/ch1.xhtml" {
		t.Fatalf("chapter = %v, want OEBPS/ch1.xhtml", meta["chapter"])
	}
}
