package reader

import (
	"testing"
)

func drainXML(t *testing.T, r *XMLReader) (string, error) {
	t.Helper()
	var out []byte
	buf := make([]byte, 1000)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return string(out), err
		}
		if n == 0 {
			return string(out), nil
		}
		out = append(out, buf[:n]...)
	}
}

func TestXMLReaderSimpleBody(t *testing.T) {
	content := "<html><head><title>T</title></head><body><p>Test</p></body></html>"
	src := NewSimpleMetadataReader([]byte(content), nil)
	r := NewXMLReader(src)

	got, err := drainXML(t, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Test " {
		t.Fatalf("got %q, want %q", got, "Test ")
	}

	meta := r.CurrentMetadata()
	xmlMeta, _ := meta[xmlReaderMetaKey].(map[string]any)
	if xmlMeta[xmlReaderMetaKeyTitle] != "T" {
		t.Fatalf("title = %v, want %q", xmlMeta[xmlReaderMetaKeyTitle], "T")
	}
}

func TestXMLReaderNoBody(t *testing.T) {
	content := "<html><head><title>T</title></head><p>x</p></html>"
	src := NewSimpleMetadataReader([]byte(content), nil)
	r := NewXMLReader(src)

	got, err := drainXML(t, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestXMLReaderMalformedTagsIsInvalidData(t *testing.T) {
	content := "<body><p>x</p></p></body>"
	src := NewSimpleMetadataReader([]byte(content), nil)
	r := NewXMLReader(src)

	_, err := drainXML(t, r)
	if err == nil {
		t.Fatal("expected an error on malformed tags, got nil")
	}
}

func TestXMLReaderSmallBuffer(t *testing.T) {
	content := "<html><body><p>A long sentence that is more than 10 bytes</p><p>small</p></body></html>"
	src := NewSimpleMetadataReader([]byte(content), nil)
	r := NewXMLReader(src)

	var out []byte
	buf := make([]byte, 10)
	for {
		n, err := r.Read(buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
	}

	want := "A long sentence that is more than 10 bytes small "
	if string(out) != want {
		t.Fatalf("got %q, want %q", string(out), want)
	}
}

func TestXMLReaderPropagatesInnerMetadata(t *testing.T) {
	content := "<html><head><title>T</title></head><body><p>s</p></body></html>"
	src := NewSimpleMetadataReader([]byte(content), map[string]any{"key": "value"})
	r := NewXMLReader(src)

	if _, err := drainXML(t, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta := r.CurrentMetadata()
	inner, _ := meta[SimpleMetadataReaderKey].(map[string]any)
	if inner["key"] != "value" {
		t.Fatalf("inner metadata lost: %#v", meta)
	}
}
