package infrastructure

import (
	"log/slog"

	"twstock/internal/table"
)

// ErrorAttr renders err as a log attribute. A nil error renders empty.
func ErrorAttr(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// KindAttr tags a failed table query with its error kind. Errors that did
// not come from a table render as "unknown".
func KindAttr(err error) slog.Attr {
	return slog.String("kind", table.KindOf(err).String())
}
