package scrape

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/oarkflow/anonymizer"
	"github.com/oarkflow/search"
	"github.com/sirupsen/logrus"

	"github.com/jumpei00/gobacktest/marketdata"
)

const priceTableURL = "https://www.sharesansar.com/today-share-price"

// headerMapping renames the site table headers to the indexed row schema
var headerMapping = map[string]string{
	"Symbol": "Symbol",
	"Open":   "Open",
	"High":   "High",
	"Low":    "Low",
	"Close":  "Close",
	"Vol":    "Volume",
}

// NormalizeDataDir renames exported files in dir from one date pattern to
// another, ex) "<year>_<month>_<date>.csv" -> "<year>-<month>-<date>.csv"
func NormalizeDataDir(dir, fromPattern, toPattern string) error {
	dirInfos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, dirInfo := range dirInfos {
		output, err := anonymizer.Transform(fromPattern, toPattern, dirInfo.Name())
		if err != nil {
			return err
		}
		if output == dirInfo.Name() {
			continue
		}
		err = os.Rename(filepath.Join(dir, dirInfo.Name()), filepath.Join(dir, output))
		if err != nil {
			return err
		}
	}
	return nil
}

// RenameHeaders rewrites the header row of a CSV file using the given
// mapping, unmapped columns keep their original names
func RenameHeaders(inputFile, outputFile string, headMap ...map[string]string) error {
	mapping := headerMapping
	if len(headMap) > 0 {
		mapping = headMap[0]
	}

	file, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open file: %v", err)
	}
	records, err := csv.NewReader(file).ReadAll()
	file.Close()
	if err != nil {
		return fmt.Errorf("failed to read CSV data: %v", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no data in CSV file")
	}

	for i, header := range records[0] {
		if renamed, ok := mapping[header]; ok {
			records[0][i] = renamed
		}
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV data: %v", err)
	}
	writer.Flush()
	return writer.Error()
}

// DownloadDailyCSV fetches today's share price table into the data
// directory unless the index already holds today's rows, it reports whether
// a new file was written
func DownloadDailyCSV(dataDir string) (bool, error) {
	engine, err := search.GetEngine[map[string]any](marketdata.EngineName)
	if err != nil {
		return false, err
	}
	now := time.Now()
	result, err := engine.Search(&search.Params{Query: now.Format(time.DateOnly), Properties: []string{"Date"}})
	if err != nil {
		return false, err
	}
	if result.Count > 0 {
		return false, nil
	}
	if err := fetchDate(dataDir, now); err != nil {
		return false, err
	}
	return true, nil
}

func fetchDate(dataDir string, date time.Time) error {
	rows, err := scrapePriceTable(priceTableURL)
	if err != nil {
		return err
	}
	path := filepath.Join(dataDir, fmt.Sprintf("%s.csv", date.Format(time.DateOnly)))
	if err := saveCSV(dedupeRows(rows), path); err != nil {
		return err
	}
	return RenameHeaders(path, path)
}

func scrapePriceTable(url string) ([][]string, error) {
	c := colly.NewCollector(
		colly.AllowedDomains("www.sharesansar.com"),
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.5005.115 Safari/537.36"),
	)

	var rows [][]string
	c.OnHTML("table.table-bordered", func(e *colly.HTMLElement) {
		e.ForEach("tr", func(_ int, el *colly.HTMLElement) {
			var row []string
			el.ForEach("th, td", func(_ int, cell *colly.HTMLElement) {
				row = append(row, strings.TrimSpace(cell.Text))
			})
			rows = append(rows, row)
		})
	})
	c.OnRequest(func(r *colly.Request) {
		logrus.Infof("visiting %v", r.URL.String())
	})
	c.OnError(func(r *colly.Response, err error) {
		logrus.Warnf("scrape error: %v, %v", r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no price table found at %v", url)
	}
	return rows, nil
}

// dedupeRows drops repeated data rows, the header row is always kept
func dedupeRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	seen := make(map[string]bool)
	out := rows[:1]
	for _, row := range rows[1:] {
		key := strings.Join(row, ",")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

func saveCSV(rows [][]string, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("could not write to CSV file: %v", err)
	}
	writer.Flush()
	return writer.Error()
}
