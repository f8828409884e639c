package generate_excel

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type CostObjectSource interface {
	CostObjects(ctx context.Context, id storage.Identity, f service.CostObjectFilter) ([]service.CostObjectSummary, error)
	CostObject(ctx context.Context, id storage.Identity, costObjectID string) (service.CostObjectDetail, error)
}

type GenerateExcelService struct {
	source CostObjectSource
}

func NewGenerateService(source CostObjectSource) *GenerateExcelService {
	return &GenerateExcelService{source: source}
}

// operationColumns is the fixed column order of the hour buckets.
var operationColumns = []string{
	storage.OpMontage,
	storage.OpDemontage,
	storage.OpTransport,
	storage.OpInbetriebnahme,
	storage.OpAbnahme,
	storage.OpWerk,
	storage.SpecialTypeRegie,
	storage.SpecialTypeFehler,
}

const sheet = "Kostenobjekte"

// GenerateExcel writes one row per cost object of the caller's team: totals,
// hours per operation and one column per worker.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, id storage.Identity, f service.CostObjectFilter) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	list, err := g.source.CostObjects(ctx, id, f)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch list: %w", op, err)
	}

	details := make([]service.CostObjectDetail, 0, len(list))
	workerSet := map[string]bool{}
	for _, co := range list {
		d, err := g.source.CostObject(ctx, id, co.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: fetch %s: %w", op, co.ID, err)
		}
		for _, w := range d.Workers {
			workerSet[w.Key] = true
		}
		details = append(details, d)
	}

	workers := make([]string, 0, len(workerSet))
	for w := range workerSet {
		workers = append(workers, w)
	}
	sort.Strings(workers)

	file := excelize.NewFile()
	defer file.Close()
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headers := []string{"Kostenobjekt", "Status", "Stunden", "Letzte Aktivität"}
	for _, o := range operationColumns {
		headers = append(headers, storage.OperationLabels[o])
	}
	baseLen := len(headers)
	headers = append(headers, workers...)

	for i, name := range headers {
		file.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	file.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	workerCol := make(map[string]int, len(workers))
	for i, w := range workers {
		workerCol[w] = baseLen + i + 1
	}

	for i, d := range details {
		row := i + 2
		status := "aktiv"
		if d.Archived {
			status = "archiviert"
		}

		file.SetCellValue(sheet, cellName(1, row), d.ID)
		file.SetCellValue(sheet, cellName(2, row), status)
		file.SetCellValue(sheet, cellName(3, row), d.TotalHours)
		file.SetCellValue(sheet, cellName(4, row), d.LastActivityDate)

		byOp := make(map[string]float64, len(d.Operations))
		for _, b := range d.Operations {
			byOp[b.Key] = b.Hours
		}
		for j, o := range operationColumns {
			if h, ok := byOp[o]; ok {
				file.SetCellValue(sheet, cellName(5+j, row), h)
			}
		}

		for _, b := range d.Workers {
			file.SetCellValue(sheet, cellName(workerCol[b.Key], row), b.Hours)
		}
	}

	file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	file.SetColWidth(sheet, "A", "D", 16)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
