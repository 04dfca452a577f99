package market

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// FileSourceConfig locates the feed files inside a data directory.
type FileSourceConfig struct {
	DataDir        string
	StocksFile     string
	TechnicalsFile string
	NewsFile       string
	BreadthFile    string
}

// FileSource loads market data from local feed files: stock records and
// technicals as JSON maps keyed by symbol, news as CSV, breadth as a
// single JSON object. Missing files are skipped; a snapshot built from
// whichever files exist is still useful.
type FileSource struct {
	cfg    FileSourceConfig
	logger *slog.Logger
}

// NewFileSource creates a FileSource for the given directory layout.
func NewFileSource(cfg FileSourceConfig, logger *slog.Logger) *FileSource {
	return &FileSource{cfg: cfg, logger: logger}
}

// Name implements Source.
func (f *FileSource) Name() string { return "file" }

// Apply implements Source. It loads every feed file that exists and
// reports an error only when no file could be read at all.
func (f *FileSource) Apply(ctx context.Context, snap *Snapshot) error {
	loaded := 0

	if err := f.loadStocks(snap); err == nil {
		loaded++
	} else if !os.IsNotExist(err) {
		f.logger.Warn("failed to load stock feed", "error", err)
	}

	if err := f.loadTechnicals(snap); err == nil {
		loaded++
	} else if !os.IsNotExist(err) {
		f.logger.Warn("failed to load technicals feed", "error", err)
	}

	if err := f.loadNews(snap); err == nil {
		loaded++
	} else if !os.IsNotExist(err) {
		f.logger.Warn("failed to load news feed", "error", err)
	}

	if err := f.loadBreadth(snap); err == nil {
		loaded++
	} else if !os.IsNotExist(err) {
		f.logger.Warn("failed to load breadth feed", "error", err)
	}

	if loaded == 0 {
		return types.NewErrorf(types.DATA_LOAD_FAILED, "no feed files readable in %s", f.cfg.DataDir)
	}
	return nil
}

func (f *FileSource) path(name string) string {
	return filepath.Join(f.cfg.DataDir, name)
}

func (f *FileSource) loadStocks(snap *Snapshot) error {
	data, err := os.ReadFile(f.path(f.cfg.StocksFile))
	if err != nil {
		return err
	}

	var records map[string]StockRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return types.WrapError(types.DATA_LOAD_FAILED, "failed to parse stock feed", err)
	}

	for symbol, rec := range records {
		rec.Symbol = symbol
		snap.Stocks[symbol] = rec

		if rec.Sector != "" {
			perf := snap.Sectors[rec.Sector]
			if rec.ChangePercent != nil {
				perf.ChangePercent = *rec.ChangePercent
			}
			if rec.Volume != nil {
				perf.Volume += *rec.Volume
			}
			snap.Sectors[rec.Sector] = perf
		}
	}
	return nil
}

func (f *FileSource) loadTechnicals(snap *Snapshot) error {
	data, err := os.ReadFile(f.path(f.cfg.TechnicalsFile))
	if err != nil {
		return err
	}

	var technicals map[string]Technicals
	if err := json.Unmarshal(data, &technicals); err != nil {
		return types.WrapError(types.DATA_LOAD_FAILED, "failed to parse technicals feed", err)
	}

	for symbol, t := range technicals {
		snap.Technicals[symbol] = t
	}
	return nil
}

// loadNews reads the news CSV. Columns follow the ingestion export:
// title, description, content, publishedAt, url. Text fields are
// HTML-stripped; the source is derived from the URL host.
func (f *FileSource) loadNews(snap *Snapshot) error {
	file, err := os.Open(f.path(f.cfg.NewsFile))
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return types.WrapError(types.DATA_LOAD_FAILED, "failed to read news CSV header", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.logger.Warn("skipping malformed news row", "error", err)
			continue
		}

		title := StripHTML(field(row, "title"))
		if title == "" {
			continue
		}

		item := NewsItem{
			Title:       title,
			Description: StripHTML(field(row, "description")),
			Content:     StripHTML(field(row, "content")),
			URL:         field(row, "url"),
			Sentiment:   field(row, "sentiment"),
		}
		item.Source = sourceFromURL(item.URL)
		if ts := field(row, "publishedAt"); ts != "" {
			if parsed, err := parseNewsTime(ts); err == nil {
				item.PublishedAt = parsed
			}
		}

		snap.News = append(snap.News, item)
	}
	return nil
}

func (f *FileSource) loadBreadth(snap *Snapshot) error {
	data, err := os.ReadFile(f.path(f.cfg.BreadthFile))
	if err != nil {
		return err
	}

	var breadth MarketBreadth
	if err := json.Unmarshal(data, &breadth); err != nil {
		return types.WrapError(types.DATA_LOAD_FAILED, "failed to parse breadth feed", err)
	}
	snap.Breadth = &breadth
	return nil
}

// sourceFromURL extracts a publisher name from an article URL.
func sourceFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Host
	if len(host) > 4 && host[:4] == "www." {
		host = host[4:]
	}
	return host
}

var newsTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseNewsTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range newsTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
