package format

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PDF, "PDF"},
		{PNG, "PNG"},
		{JPEG, "JPEG"},
		{GIF, "GIF"},
		{HTML, "HTML"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PDF, ".pdf"},
		{PNG, ".png"},
		{JPEG, ".jpg"},
		{GIF, ".gif"},
		{HTML, ".html"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
		if Detect("x"+tt.want) != tt.format {
			t.Errorf("Detect(%q) != %s", "x"+tt.want, tt.format)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"out.pdf", PDF},
		{"OUT.PDF", PDF},
		{"img/border_1.jpg", JPEG},
		{"border.JPEG", JPEG},
		{"graph.png", PNG},
		{"error.htm", HTML},
		{"notes.txt", Unknown},
		{"noextension", Unknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectFromMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"pdf", []byte("%PDF-1.5\n"), PDF},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00"), PNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, JPEG},
		{"gif", []byte("GIF89a...."), GIF},
		{"doctype", []byte("  <!doctype html><title>x</title>"), HTML},
		{"html tag", []byte("\n<html>"), HTML},
		{"bom", []byte("\xef\xbb\xbf<HTML>"), HTML},
		{"xhtml", []byte(`<?xml version="1.0"?><html xmlns="x">`), HTML},
		{"plain xml", []byte(`<?xml version="1.0"?><svg/>`), Unknown},
		{"json", []byte(`{"success": true}`), Unknown},
		{"short", []byte("%P"), Unknown},
		{"empty", nil, Unknown},
	}

	for _, tt := range tests {
		if got := DetectFromMagic(tt.data); got != tt.want {
			t.Errorf("%s: DetectFromMagic = %v, want %v", tt.name, got, tt.want)
		}
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestDetectFromReader(t *testing.T) {
	got, err := DetectFromReader(bytes.NewReader([]byte("%PDF-1.4")))
	if err != nil || got != PDF {
		t.Errorf("DetectFromReader = %v, %v", got, err)
	}
	if _, err := DetectFromReader(errReader{}); err == nil {
		t.Error("expected read error")
	}
}

func TestExpect(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fake := filepath.Join(dir, "fake.pdf")
	if err := os.WriteFile(fake, []byte("<html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Expect(pdf, PDF); err != nil {
		t.Errorf("Expect(pdf) = %v", err)
	}
	if err := Expect(fake, PDF); err == nil {
		t.Error("expected error for HTML content named .pdf")
	}
	if err := Expect(filepath.Join(dir, "missing.pdf"), PDF); err == nil {
		t.Error("expected error for missing file")
	}
	if !PNG.IsImage() || PDF.IsImage() {
		t.Error("IsImage returned the wrong answer")
	}
}
