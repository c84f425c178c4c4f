package validate

import (
	"strings"
	"testing"
)

const tenMB = 10 * 1024 * 1024

func TestAudio(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"wav under limit", "audio/wav", 1024, false},
		{"webm with codec suffix", "audio/webm;codecs=opus", 2048, false},
		{"ogg with codec suffix", "audio/ogg;codecs=opus", 2048, false},
		{"mp3", "audio/mp3", 500, false},
		{"mpeg", "audio/mpeg", 500, false},
		{"uppercase type", "Audio/WAV", 500, false},
		{"zero bytes", "audio/wav", 0, true},
		{"over limit", "audio/wav", tenMB + 1, true},
		{"text type", "text/plain", 1024, true},
		{"video type", "video/mp4", 1024, true},
		{"empty type", "", 1024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Audio(tt.contentType, tt.size, tenMB)
			if (err != nil) != tt.wantErr {
				t.Errorf("Audio(%q, %d) error = %v, wantErr %v", tt.contentType, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestNoteContent(t *testing.T) {
	if err := NoteContent("short note"); err != nil {
		t.Errorf("valid content rejected: %v", err)
	}
	if err := NoteContent(""); err == nil {
		t.Error("empty content should be rejected")
	}
	if err := NoteContent("   \n\t  "); err == nil {
		t.Error("whitespace-only content should be rejected")
	}
	if err := NoteContent(strings.Repeat("a", MaxContentLen)); err != nil {
		t.Errorf("content at the limit rejected: %v", err)
	}
	if err := NoteContent(strings.Repeat("a", MaxContentLen+1)); err == nil {
		t.Error("content over the limit should be rejected")
	}
}

func TestTitle(t *testing.T) {
	if err := Title("My Note"); err != nil {
		t.Errorf("valid title rejected: %v", err)
	}
	if err := Title("  "); err == nil {
		t.Error("blank title should be rejected")
	}
	if err := Title(strings.Repeat("t", MaxTitleLen+1)); err == nil {
		t.Error("title over the limit should be rejected")
	}
}

func TestTags(t *testing.T) {
	if err := Tags([]string{"trabajo", "ideas"}); err != nil {
		t.Errorf("valid tags rejected: %v", err)
	}
	if err := Tags(nil); err != nil {
		t.Errorf("empty tag list rejected: %v", err)
	}
	if err := Tags(make([]string, MaxTags+1)); err == nil {
		t.Error("more than MaxTags should be rejected")
	}
	if err := Tags([]string{"ok", " "}); err == nil {
		t.Error("blank tag should be rejected")
	}
	if err := Tags([]string{strings.Repeat("x", MaxTagLen + 1)}); err == nil {
		t.Error("oversized tag should be rejected")
	}
}

func TestNoteID(t *testing.T) {
	for _, id := range []string{"abc123", "a-b_c", "m1n2o3P4"} {
		if err := NoteID(id); err != nil {
			t.Errorf("NoteID(%q) rejected: %v", id, err)
		}
	}
	for _, id := range []string{"", "a b", "a;b", "a/b", "ñote", "1' OR '1'='1"} {
		if err := NoteID(id); err == nil {
			t.Errorf("NoteID(%q) should be rejected", id)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<script>alert(1)</script>hello", "hello"},
		{"<b>bold</b> text", "bold text"},
		{"  plain text  ", "plain text"},
		{"a < b pero a & b", "a < b pero a & b"},
		{"<img src=x onerror=alert(1)>hola", "hola"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
