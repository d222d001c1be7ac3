package convert

import (
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// UTF8 decodes bytes as UTF-8 text, dropping a leading byte order mark.
func UTF8() Conversion[[]byte, string] {
	return Func(
		func(b []byte) (string, error) {
			if !utf8.Valid(b) {
				return "", &DecodeError{Stage: StageUTF8, Err: ErrInvalidUTF8}
			}
			return strings.TrimPrefix(string(b), "\ufeff"), nil
		},
		func(s string) ([]byte, error) {
			return []byte(s), nil
		},
	)
}

// YAML decodes a whole document into T.
func YAML[T any]() Conversion[string, T] {
	return Func(
		func(s string) (T, error) {
			var v T
			if err := yaml.Unmarshal([]byte(s), &v); err != nil {
				return v, &DecodeError{Stage: StageYAML, Err: err}
			}
			return v, nil
		},
		func(v T) (string, error) {
			data, err := yaml.Marshal(v)
			if err != nil {
				return "", &DecodeError{Stage: StageYAML, Err: err}
			}
			return string(data), nil
		},
	)
}

// YAMLFile is UTF8 followed by YAML.
func YAMLFile[T any]() Conversion[[]byte, T] {
	return Chain(UTF8(), YAML[T]())
}

// Dialect is the front matter encoding selected by its delimiter.
type Dialect int

const (
	// DialectYAML is "---" delimited YAML front matter.
	DialectYAML Dialect = iota
	// DialectTOML is "+++" delimited TOML front matter.
	DialectTOML
)

func (d Dialect) delimiter() string {
	if d == DialectTOML {
		return "+++"
	}
	return "---"
}

// Document is text split into optional raw front matter and optional body.
type Document struct {
	Dialect     Dialect
	FrontMatter *string
	Body        *string
}

// FrontMatter splits text into front matter and body. A document may open
// with a line that is exactly "---" (YAML) or "+++" (TOML); the front matter
// runs until the next line that is exactly the same delimiter. Without an
// opening delimiter the whole text is the body. Bodies that are empty after
// trimming become nil.
func FrontMatter() Conversion[string, Document] {
	return Func(splitFrontMatter, joinFrontMatter)
}

func splitFrontMatter(text string) (Document, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	dialect, ok := openingDialect(text)
	if !ok {
		return Document{Body: nonEmpty(text)}, nil
	}
	delim := dialect.delimiter()

	// Re-prefix a newline so the closing delimiter is always found as
	// "\n<delim>" at the start of a line.
	rest := "\n" + strings.TrimLeft(text[len(delim):], "\n")
	off := 0
	for {
		i := strings.Index(rest[off:], "\n"+delim)
		if i < 0 {
			return Document{}, &DecodeError{Stage: StageFrontMatter, Err: ErrUnterminatedFrontMatter}
		}
		i += off
		end := i + 1 + len(delim)
		if end == len(rest) || rest[end] == '\n' {
			matter := ""
			if i > 0 {
				matter = rest[1:i] + "\n"
			}
			return Document{
				Dialect:     dialect,
				FrontMatter: &matter,
				Body:        nonEmpty(rest[end:]),
			}, nil
		}
		off = end
	}
}

func openingDialect(text string) (Dialect, bool) {
	for _, d := range []Dialect{DialectYAML, DialectTOML} {
		delim := d.delimiter()
		if text == delim || strings.HasPrefix(text, delim+"\n") {
			return d, true
		}
	}
	return 0, false
}

func joinFrontMatter(doc Document) (string, error) {
	var b strings.Builder
	if doc.FrontMatter != nil {
		delim := doc.Dialect.delimiter()
		b.WriteString(delim + "\n")
		b.WriteString(*doc.FrontMatter)
		if !strings.HasSuffix(*doc.FrontMatter, "\n") && *doc.FrontMatter != "" {
			b.WriteString("\n")
		}
		b.WriteString(delim + "\n")
		if doc.Body != nil {
			b.WriteString("\n")
		}
	}
	if doc.Body != nil {
		b.WriteString(*doc.Body)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Matter is a document whose front matter has been decoded into T.
type Matter[T any] struct {
	Dialect     Dialect
	FrontMatter *T
	Body        *string
}

// Typed decodes a Document's front matter into T using its dialect.
func Typed[T any]() Conversion[Document, Matter[T]] {
	return Func(
		func(doc Document) (Matter[T], error) {
			m := Matter[T]{Dialect: doc.Dialect, Body: doc.Body}
			if doc.FrontMatter == nil {
				return m, nil
			}
			var v T
			switch doc.Dialect {
			case DialectTOML:
				if err := toml.Unmarshal([]byte(*doc.FrontMatter), &v); err != nil {
					return m, &DecodeError{Stage: StageTOML, Err: err}
				}
			default:
				if err := yaml.Unmarshal([]byte(*doc.FrontMatter), &v); err != nil {
					return m, &DecodeError{Stage: StageYAML, Err: err}
				}
			}
			m.FrontMatter = &v
			return m, nil
		},
		func(m Matter[T]) (Document, error) {
			doc := Document{Dialect: m.Dialect, Body: m.Body}
			if m.FrontMatter == nil {
				return doc, nil
			}
			var (
				data []byte
				err  error
			)
			switch m.Dialect {
			case DialectTOML:
				data, err = toml.Marshal(*m.FrontMatter)
				if err != nil {
					return doc, &DecodeError{Stage: StageTOML, Err: err}
				}
			default:
				data, err = yaml.Marshal(*m.FrontMatter)
				if err != nil {
					return doc, &DecodeError{Stage: StageYAML, Err: err}
				}
			}
			s := string(data)
			doc.FrontMatter = &s
			return doc, nil
		},
	)
}

// Markdown is the standard front matter file pipeline:
// bytes → UTF-8 text → front matter + body → typed front matter.
func Markdown[T any]() Conversion[[]byte, Matter[T]] {
	return Chain3(UTF8(), FrontMatter(), Typed[T]())
}
