package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	applogger "FinLab/pkg/logger"
)

// RawCSVStore keeps one <TICKER>.csv per ticker in a directory.
type RawCSVStore struct {
	dir string
	l   *applogger.Logger
}

func NewRawCSVStore(dir string, l *applogger.Logger) *RawCSVStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &RawCSVStore{dir: dir, l: l}
}

// Dir is the directory backing the store.
func (s *RawCSVStore) Dir() string { return s.dir }

// Tickers returns the file stems of every CSV in the directory, sorted.
func (s *RawCSVStore) Tickers(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list raw dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(out)
	return out, nil
}

// Load reads one ticker's CSV. Rows may be ragged; the cleaner decides what to keep.
func (s *RawCSVStore) Load(_ context.Context, ticker string) (models.RawTable, error) {
	f, err := os.Open(s.path(ticker))
	if err != nil {
		return models.RawTable{}, fmt.Errorf("open raw %s: %w", ticker, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.ReuseRecord = false

	t := models.RawTable{Ticker: ticker}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				s.l.Debug("skip malformed csv line",
					applogger.String("ticker", ticker),
					applogger.Int("line", pe.Line),
					applogger.Error(err))
				continue
			}
			return models.RawTable{}, fmt.Errorf("read raw %s: %w", ticker, err)
		}
		if t.Header == nil {
			t.Header = rec
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// Save writes body as <ticker>.csv, replacing any previous file.
func (s *RawCSVStore) Save(_ context.Context, ticker string, body []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create raw dir: %w", err)
	}
	return writeFileAtomic(s.path(ticker), body)
}

func (s *RawCSVStore) path(ticker string) string {
	return filepath.Join(s.dir, ticker+".csv")
}

func writeFileAtomic(path string, body []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

var (
	_ domrepo.RawSource = (*RawCSVStore)(nil)
	_ domrepo.RawSink   = (*RawCSVStore)(nil)
)
