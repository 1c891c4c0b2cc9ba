package ttf

import "fmt"

// FontWarning is a problem found in a font that did not stop decoding,
// e.g. unsorted directory records or tables which should not appear together.
type FontWarning struct {
	Table  Tag // 0 for the table directory
	Issue  string
	Offset uint32 // file offset, 0 if not known
}

func (w FontWarning) String() string {
	where := "directory"
	if w.Table != 0 {
		where = w.Table.String()
	}
	if w.Offset == 0 {
		return fmt.Sprintf("warning: %s: %s", where, w.Issue)
	}
	return fmt.Sprintf("warning: %s@%#x: %s", where, w.Offset, w.Issue)
}

// errorCollector gathers warnings while a font is decoded. There is nothing
// to collect for errors, as the first structural error ends decoding.
type errorCollector struct {
	warnings []FontWarning
}

func (ec *errorCollector) warnf(table Tag, offset uint32, format string, args ...any) {
	w := FontWarning{Table: table, Issue: fmt.Sprintf(format, args...), Offset: offset}
	tracer().Infof("%s", w)
	ec.warnings = append(ec.warnings, w)
}

func (ec *errorCollector) hasWarnings() bool {
	return len(ec.warnings) > 0
}
