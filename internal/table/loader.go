package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// Encodings tried by the loader, in order.
const (
	EncodingUTF8 = "utf-8"
	EncodingBig5 = "big5"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeError reports a byte sequence that is invalid in the named encoding.
type DecodeError struct {
	Encoding string
	Offset   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s byte sequence at offset %d", e.Encoding, e.Offset)
}

// LoadObserver is notified of the outcome of every Load call.
type LoadObserver interface {
	ObserveLoad(ctx context.Context, encoding string, err error)
}

// Loader reads delimited text files into Tables.
type Loader struct {
	logger   *slog.Logger
	observer LoadObserver
	comma    rune
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithObserver registers an observer for load outcomes.
func WithObserver(o LoadObserver) LoaderOption {
	return func(l *Loader) {
		l.observer = o
	}
}

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) LoaderOption {
	return func(l *Loader) {
		l.comma = r
	}
}

// NewLoader creates a loader that logs through logger.
func NewLoader(logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		logger: logger.With(slog.String("component", "table_loader")),
		comma:  ',',
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the file at path. The content is decoded as UTF-8 and, when it
// holds invalid UTF-8 byte sequences, decoded once more as Big5. It fails
// with ErrNotFound when path does not exist and ErrParseFailure when the
// content cannot be decoded or parsed.
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	t, enc, err := l.load(path)
	if l.observer != nil {
		l.observer.ObserveLoad(ctx, enc, err)
	}
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "table loaded",
		slog.String("path", path),
		slog.String("encoding", enc),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.columns)))

	return t, nil
}

// LoadOrDefault is Load with every failure logged and replaced by fallback.
// A nil fallback becomes an empty table. The batch queries call Load instead
// so that each dropped item keeps its error kind.
func (l *Loader) LoadOrDefault(ctx context.Context, path string, fallback *Table) *Table {
	t, err := l.Load(ctx, path)
	if err != nil {
		l.logger.WarnContext(ctx, "table load failed, using fallback",
			slog.String("path", path),
			slog.String("kind", KindOf(err).String()),
			slog.String("error", err.Error()))
		if fallback == nil {
			return Empty()
		}
		return fallback
	}
	return t
}

func (l *Loader) load(path string) (*Table, string, error) {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", NotFoundError(name, err)
		}
		return nil, "", ParseError(name, err)
	}

	enc := EncodingUTF8
	text, err := decodeUTF8(data)
	if err != nil {
		l.logger.Debug("utf-8 decode failed, retrying as big5",
			slog.String("path", path),
			slog.String("error", err.Error()))

		enc = EncodingBig5
		text, err = decodeBig5(data)
		if err != nil {
			return nil, enc, ParseError(name, err)
		}
	}

	t, err := Parse(bytes.NewReader(text), l.comma)
	if err != nil {
		return nil, enc, ParseError(name, err)
	}
	return t, enc, nil
}

// decodeUTF8 validates data as UTF-8 and strips a leading byte order mark.
func decodeUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	return nil, &DecodeError{Encoding: EncodingUTF8, Offset: invalidUTF8Offset(data)}
}

// decodeBig5 converts Big5 bytes to UTF-8. The x/text decoder substitutes
// U+FFFD for invalid sequences instead of failing, so any replacement rune
// in the output marks input that is not Big5 either.
func decodeBig5(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(traditionalchinese.Big5.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("big5 decode: %w", err)
	}
	if i := bytes.IndexRune(out, utf8.RuneError); i >= 0 {
		return nil, &DecodeError{Encoding: EncodingBig5, Offset: i}
	}
	return out, nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}
