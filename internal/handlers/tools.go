package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/models"
)

const maxPriceListUploadSize = 5 << 20 // 5 MiB

type priceListEntry struct {
	Name  string
	Price decimal.Decimal
}

type priceImportResult struct {
	Updated int      `json:"updated"`
	Skipped []string `json:"skipped,omitempty"`
}

// ToolsImportPrices ingests a supplier price list (CSV or PDF) and updates
// the unit price of every matching ingredient. Lines naming unknown
// ingredients are reported back rather than silently dropped.
func ToolsImportPrices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if _, ok := currentUserID(r); !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(maxPriceListUploadSize); err != nil {
		applog.Error(r.Context(), "failed to parse price list form", "error", err)
		writeJSONError(w, http.StatusBadRequest, "upload is too large or invalid")
		return
	}

	fileName, fileBytes, fileType, err := readPriceListUpload(r)
	if err != nil {
		applog.Error(r.Context(), "price list upload read failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to read the uploaded file")
		return
	}
	if len(fileBytes) == 0 {
		writeJSONError(w, http.StatusBadRequest, "upload a price list before running the import")
		return
	}

	ctx := r.Context()
	entries, err := parsePriceList(fileBytes, fileType)
	if err != nil {
		applog.Error(ctx, "failed to parse price list", "error", err, "file", fileName, "mime", fileType)
		writeJSONError(w, http.StatusBadRequest, "we couldn't interpret the uploaded price list")
		return
	}
	if len(entries) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no priced ingredients were found in the upload")
		return
	}

	result, err := applyPriceList(ctx, entries)
	if err != nil {
		applog.Error(ctx, "failed to apply price list", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to update ingredient prices")
		return
	}

	applog.Info(ctx, "price list imported", "file", fileName, "updated", result.Updated, "skipped", len(result.Skipped))
	writeJSON(w, http.StatusOK, result)
}

func readPriceListUpload(r *http.Request) (string, []byte, string, error) {
	file, header, err := r.FormFile("price_list")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, "", nil
		}
		return "", nil, "", err
	}
	defer file.Close()

	if header.Size > maxPriceListUploadSize {
		return "", nil, "", errors.New("file exceeds upload limit")
	}

	buf := bytes.NewBuffer(make([]byte, 0, header.Size))
	if _, err := io.Copy(buf, file); err != nil {
		return "", nil, "", err
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = priceListMimeFromName(header.Filename)
	}

	return header.Filename, buf.Bytes(), mime, nil
}

func priceListMimeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	default:
		return "text/plain"
	}
}

func parsePriceList(data []byte, mime string) ([]priceListEntry, error) {
	lower := strings.ToLower(mime)
	switch {
	case strings.Contains(lower, "pdf"):
		text, err := extractTextFromPDF(data)
		if err != nil {
			return nil, err
		}
		return parsePriceLines(text), nil
	case strings.Contains(lower, "csv"):
		return parsePriceCSV(data)
	default:
		return parsePriceLines(string(data)), nil
	}
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func parsePriceCSV(data []byte) ([]priceListEntry, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	entries := make([]priceListEntry, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		entry, ok := buildPriceEntry(record[0], record[len(record)-1])
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parsePriceLines reads free-form "name ... price" lines, the shape supplier
// PDFs flatten to. The last numeric token on the line is taken as the price.
func parsePriceLines(text string) []priceListEntry {
	var entries []priceListEntry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := strings.IndexAny(line, ";,"); idx > 0 && idx < len(line)-1 {
			if entry, ok := buildPriceEntry(line[:idx], line[idx+1:]); ok {
				entries = append(entries, entry)
				continue
			}
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := strings.Join(fields[:len(fields)-1], " ")
		if entry, ok := buildPriceEntry(name, fields[len(fields)-1]); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func buildPriceEntry(name, price string) (priceListEntry, bool) {
	name = strings.TrimSpace(name)
	price = strings.TrimSpace(price)
	price = strings.TrimPrefix(price, "R$")
	price = strings.ReplaceAll(price, ",", ".")
	price = strings.TrimSpace(price)
	if name == "" || price == "" {
		return priceListEntry{}, false
	}
	value, err := decimal.NewFromString(price)
	if err != nil || value.IsNegative() {
		return priceListEntry{}, false
	}
	return priceListEntry{Name: name, Price: value.Round(2)}, true
}

func applyPriceList(ctx context.Context, entries []priceListEntry) (priceImportResult, error) {
	result := priceImportResult{}
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			var ingredient models.Ingredient
			err := tx.Where("lower(name) = ?", strings.ToLower(entry.Name)).First(&ingredient).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					applog.Warn(ctx, "price list entry has no matching ingredient", "name", entry.Name)
					result.Skipped = append(result.Skipped, entry.Name)
					continue
				}
				return err
			}
			if err := tx.Model(&ingredient).Update("unit_price", entry.Price).Error; err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return priceImportResult{}, err
	}
	return result, nil
}
