package source

import (
	"fmt"
	"sort"
)

// FileID identifies a file registered in a SourceMap. The zero value is
// reserved for synthetic spans that do not belong to any file.
type FileID uint32

// Span is a half-open byte range [Lo, Hi) inside one file.
type Span struct {
	File FileID
	Lo   uint32
	Hi   uint32
}

// Synthetic returns an empty span at the given offset.
func Synthetic(file FileID, at uint32) Span {
	return Span{File: file, Lo: at, Hi: at}
}

// IsSynthetic reports whether the span covers no source text.
func (s Span) IsSynthetic() bool {
	return s.Lo == s.Hi
}

// To returns the smallest span covering both s and other. Spans from
// different files are not merged; s is returned unchanged.
func (s Span) To(other Span) Span {
	if s.File != other.File {
		return s
	}
	lo, hi := s.Lo, s.Hi
	if other.Lo < lo {
		lo = other.Lo
	}
	if other.Hi > hi {
		hi = other.Hi
	}
	return Span{File: s.File, Lo: lo, Hi: hi}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d..%d", s.File, s.Lo, s.Hi)
}

// Position is a resolved, 1-based line/column location.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

type file struct {
	name       string
	text       string
	lineStarts []uint32
}

// SourceMap owns the text of every file in a compilation.
type SourceMap struct {
	files []file
}

func NewSourceMap() *SourceMap {
	// index 0 is the synthetic file
	return &SourceMap{files: []file{{name: "<synthetic>"}}}
}

// Add registers a file and returns its id.
func (m *SourceMap) Add(name, text string) FileID {
	starts := []uint32{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	m.files = append(m.files, file{name: name, text: text, lineStarts: starts})
	return FileID(len(m.files) - 1)
}

func (m *SourceMap) Name(id FileID) string {
	if int(id) >= len(m.files) {
		return ""
	}
	return m.files[id].name
}

func (m *SourceMap) Text(id FileID) string {
	if int(id) >= len(m.files) {
		return ""
	}
	return m.files[id].text
}

// Snippet returns the source text covered by span.
func (m *SourceMap) Snippet(s Span) string {
	text := m.Text(s.File)
	if int(s.Hi) > len(text) || s.Lo > s.Hi {
		return ""
	}
	return text[s.Lo:s.Hi]
}

// Position resolves the start of a span to a line and column.
func (m *SourceMap) Position(s Span) Position {
	if int(s.File) >= len(m.files) || s.File == 0 {
		return Position{}
	}
	f := m.files[s.File]
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > s.Lo
	}) - 1
	if line < 0 {
		line = 0
	}
	return Position{
		Filename: f.name,
		Line:     line + 1,
		Column:   int(s.Lo-f.lineStarts[line]) + 1,
	}
}
