package marketdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/oarkflow/date"
	"github.com/oarkflow/errors"
	"github.com/oarkflow/log"
	"github.com/oarkflow/search"
)

// EngineName is the search engine holding the indexed daily rows
const EngineName = "stock"

const dateFormat = "2006-01-02"

// Init loads every CSV under directory and indexes the rows into the
// process-wide search engine queried by the stock package
func Init(directory string) error {
	rows, err := loadAllCSVFiles(directory)
	if err != nil {
		return err
	}

	engine, err := search.SetEngine[map[string]any](EngineName, &search.Config{})
	if err != nil {
		return err
	}

	log.Info().Msg(fmt.Sprintf("indexing market data: %d rows", len(rows)))
	engine.InsertWithPool(rows, runtime.NumCPU(), 1000)
	log.Info().Msg("market data indexed")
	return nil
}

func parseFloat(value string) (float64, error) {
	value = strings.ReplaceAll(value, ",", "")
	return strconv.ParseFloat(value, 64)
}

// parseCSVFile reads one daily export. Expected columns are Symbol, Date,
// Open, High, Low, Close, Volume; a missing Date column falls back to the
// file name, since exports are one file per trading day.
func parseCSVFile(filename string) ([]map[string]any, error) {
	fallbackDate := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(filename), ".csv"), "_", "-")

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, filename, "")
	}
	if len(records) < 2 {
		return nil, nil
	}

	headers := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := map[string]any{}
		for i, header := range headers {
			if i >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[i])

			switch header {
			case "Symbol":
				row[header] = value
			case "Date":
				parsed, err := date.Parse(value)
				if err != nil {
					return nil, errors.Wrap(err, fmt.Sprintf("%s: %v", header, value), "")
				}
				row[header] = parsed.Format(dateFormat)
			default:
				if value == "" || value == "-" {
					row[header] = 0.0
					continue
				}
				parsed, err := parseFloat(value)
				if err != nil {
					return nil, errors.Wrap(err, fmt.Sprintf("%s: %v", header, value), "")
				}
				row[header] = parsed
			}
		}
		if _, ok := row["Date"]; !ok {
			row["Date"] = fallbackDate
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func loadAllCSVFiles(directory string) ([]map[string]interface{}, error) {
	var allData []map[string]interface{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	var errList []error
	dataCh := make(chan []map[string]interface{})
	errCh := make(chan error)
	doneCh := make(chan struct{})

	// Walk through the directory
	go func() {
		err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(path) == ".csv" {
				wg.Add(1)
				go func(path string) {
					defer wg.Done()
					data, err := parseCSVFile(path)
					if err != nil {
						errCh <- err
						return
					}
					dataCh <- data
				}(path)
			}
			return nil
		})

		if err != nil {
			errCh <- err
		}

		// Wait for all goroutines to finish
		wg.Wait()
		close(doneCh)
	}()

	for {
		select {
		case data := <-dataCh:
			mu.Lock()
			allData = append(allData, data...)
			mu.Unlock()
		case err := <-errCh:
			mu.Lock()
			errList = append(errList, err)
			mu.Unlock()
		case <-doneCh:
			if len(errList) > 0 {
				return nil, fmt.Errorf("errors occurred: %v", errList)
			}
			return allData, nil
		}
	}
}
