package bulk

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"

	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/logging"
	"github.com/abelbrown/stockroom/internal/table"
)

// Saver stores exported CSV and returns where it went.
type Saver interface {
	Save(resource string, data []byte) (location string, err error)
}

// DirSaver writes <resource>-<timestamp>.csv into Dir.
type DirSaver struct {
	Dir string
	Now func() time.Time
}

func (s DirSaver) Save(resource string, data []byte) (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("%s-%s.csv", resource, now().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// ClipboardSaver copies the CSV text to the system clipboard.
type ClipboardSaver struct {
	write func(string) error
}

func NewClipboardSaver() ClipboardSaver {
	return ClipboardSaver{write: clipboard.WriteAll}
}

func (s ClipboardSaver) Save(_ string, data []byte) (string, error) {
	write := s.write
	if write == nil {
		if clipboard.Unsupported {
			return "", fmt.Errorf("clipboard not available on this system")
		}
		write = clipboard.WriteAll
	}
	if err := write(string(data)); err != nil {
		return "", fmt.Errorf("copy to clipboard: %w", err)
	}
	return "clipboard", nil
}

// EncodeCSV writes a header of column names and one row per record.
func EncodeCSV[R any](schema table.Schema[R], columns []string, records []R) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := w.Write(schema.Row(r, columns)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Dispatcher[R]) export(resolved []R) (Summary[R], error) {
	sum := Summary[R]{Action: ActionExport}
	data, err := EncodeCSV(d.Resource.Schema, d.Resource.Columns, resolved)
	if err != nil {
		return sum, fmt.Errorf("encode csv: %w", err)
	}
	loc, err := d.Saver.Save(d.Resource.Name, data)
	if err != nil {
		return sum, err
	}
	sum.Count = len(resolved)
	sum.Location = loc
	logging.Info("exported", "resource", d.Resource.Name, "count", sum.Count, "location", loc)
	journal.Emit(d.Journal, journal.Event{Kind: journal.KindExport, Resource: d.Resource.Name, Count: sum.Count, Msg: loc})
	return sum, nil
}
