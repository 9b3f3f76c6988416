package executor

import (
	"strings"
	"testing"
)

func TestTailBufferKeepsTail(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		writes []string
		want   string
	}{
		{"under limit", 10, []string{"abc", "def"}, "abcdef"},
		{"exact limit", 6, []string{"abc", "def"}, "abcdef"},
		{"overflow keeps tail", 4, []string{"abc", "def"}, "cdef"},
		{"single huge write", 4, []string{"abcdefgh"}, "efgh"},
		{"zero limit retains nothing", 0, []string{"abc"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &tailBuffer{limit: tt.limit}
			for _, w := range tt.writes {
				n, err := b.Write([]byte(w))
				if err != nil || n != len(w) {
					t.Fatalf("Write(%q) = (%d, %v)", w, n, err)
				}
			}
			if got := b.String(); got != tt.want {
				t.Errorf("tail = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogWriterSplitsLines(t *testing.T) {
	lw := newLogWriter("[x] ", 100)

	// Writes spanning line boundaries must not panic or lose data; the
	// destination is the (possibly nil) active logger, so only buffer
	// behavior is observable here.
	if _, err := lw.Write([]byte("one\ntwo\npartial")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := lw.buf.String(); got != "partial" {
		t.Errorf("buffered partial line = %q, want %q", got, "partial")
	}
	lw.Flush()
	if lw.buf.Len() != 0 {
		t.Errorf("buffer not drained after Flush")
	}
}

func TestLogWriterTruncatesLongLines(t *testing.T) {
	lw := newLogWriter("", 10)
	if _, err := lw.Write([]byte(strings.Repeat("a", 50))); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !lw.dropped {
		t.Error("overlong line did not mark dropped bytes")
	}
	if lw.buf.Len() != 10 {
		t.Errorf("buffered %d bytes, want capped 10", lw.buf.Len())
	}
}

func TestNilLogWriterIsSafe(t *testing.T) {
	var lw *logWriter
	if n, err := lw.Write([]byte("abc")); n != 3 || err != nil {
		t.Errorf("nil Write = (%d, %v)", n, err)
	}
	lw.Flush()
}
