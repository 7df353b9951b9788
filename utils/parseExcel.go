package utils

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"autoPallet/models"
)

// Job is one stacking request read from a batch sheet.
type Job struct {
	Row     int
	SKU     string
	Request models.PalletizationRequest
}

// RowError reports a sheet row that could not become a job.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

var requiredColumns = []string{
	"pallet_length", "pallet_width", "pallet_height", "pallet_max_weight", "box_weight",
}

var boxColumns = []string{"box_length", "box_width", "box_height"}

var sizeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[×xX*-]\s*(\d+(?:\.\d+)?)\s*[×xX*-]\s*(\d+(?:\.\d+)?)`)

// ParseSize reads a box size written as length x width x height.
// 支持 300*200*150、300x200x150、300×200×150mm 等格式
func ParseSize(text string) (float64, float64, float64, bool) {
	match := sizeRe.FindStringSubmatch(text)
	if len(match) < 4 {
		return 0, 0, 0, false
	}
	l, _ := strconv.ParseFloat(match[1], 64)
	w, _ := strconv.ParseFloat(match[2], 64)
	h, _ := strconv.ParseFloat(match[3], 64)
	return l, w, h, true
}

// ReadJobs reads batch jobs from the first sheet of an xlsx file.
func ReadJobs(filePath string) ([]Job, []RowError, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return readJobs(f)
}

// ReadJobsFrom is ReadJobs for an uploaded workbook.
func ReadJobsFrom(r io.Reader) ([]Job, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return readJobs(f)
}

// readJobs maps header names to columns. Box dimensions come from the
// box_length/box_width/box_height columns or, failing that, a box_size
// column such as "300x200x150". Rows that do not parse are returned as
// RowErrors and skipped.
func readJobs(f *excelize.File) ([]Job, []RowError, error) {
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("工作表为空：%s", sheet)
	}

	// 找出各列位置
	colIndex := make(map[string]int)
	for i, val := range rows[0] {
		colIndex[strings.ToLower(strings.TrimSpace(val))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := colIndex[name]; !ok {
			return nil, nil, fmt.Errorf("找不到列：%s", name)
		}
	}
	_, hasSize := colIndex["box_size"]
	hasDims := true
	for _, name := range boxColumns {
		if _, ok := colIndex[name]; !ok {
			hasDims = false
		}
	}
	if !hasDims && !hasSize {
		return nil, nil, fmt.Errorf("找不到箱子尺寸列：%s 或 box_size", strings.Join(boxColumns, ", "))
	}

	var jobs []Job
	var bad []RowError
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blank(row) {
			continue
		}
		cell := func(name string) string {
			idx, ok := colIndex[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		num := func(name string) (float64, error) {
			text := cell(name)
			if text == "" {
				return 0, fmt.Errorf("%s is empty", name)
			}
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return 0, fmt.Errorf("%s: %q is not a number", name, text)
			}
			return v, nil
		}

		var box models.BoxSpec
		var pallet models.PalletSpec
		var err error
		if hasDims && cell("box_length") != "" {
			if box.Length, err = num("box_length"); err == nil {
				if box.Width, err = num("box_width"); err == nil {
					box.Height, err = num("box_height")
				}
			}
		} else if l, w, h, ok := ParseSize(cell("box_size")); ok {
			box.Length, box.Width, box.Height = l, w, h
		} else {
			err = fmt.Errorf("box_size: %q is not LxWxH", cell("box_size"))
		}
		if err == nil {
			box.Weight, err = num("box_weight")
		}
		if err == nil {
			pallet.Length, err = num("pallet_length")
		}
		if err == nil {
			pallet.Width, err = num("pallet_width")
		}
		if err == nil {
			pallet.Height, err = num("pallet_height")
		}
		if err == nil {
			pallet.MaxWeight, err = num("pallet_max_weight")
		}
		if err != nil {
			bad = append(bad, RowError{Row: rowNum, Err: err})
			continue
		}

		sku := cell("sku")
		if sku == "" {
			sku = "row-" + strconv.Itoa(rowNum)
		}
		jobs = append(jobs, Job{
			Row:     rowNum,
			SKU:     sku,
			Request: models.PalletizationRequest{Box: &box, Pallet: pallet},
		})
	}
	return jobs, bad, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
