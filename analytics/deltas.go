package analytics

import (
	"github.com/cppla/deltatracker/models"
	"github.com/cppla/deltatracker/utils"
	"github.com/shopspring/decimal"
)

// Delta directions shown next to history rows.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// DeltaRow is one history line: a scan and its change against the next older scan.
type DeltaRow struct {
	Scan      models.ScanRecord `json:"scan"`
	Balance   string            `json:"balance"`
	Delta     *decimal.Decimal  `json:"delta"`
	DeltaText string            `json:"delta_text"`
	Direction string            `json:"direction"`
}

// DeltaRows turns newest-first scans into history rows. The oldest row has no delta.
func DeltaRows(newestFirst []models.ScanRecord) []DeltaRow {
	rows := make([]DeltaRow, 0, len(newestFirst))
	for i, s := range newestFirst {
		row := DeltaRow{Scan: s, Balance: utils.FormatBalance(s.NumericValue)}
		if i+1 < len(newestFirst) {
			d := s.NumericValue.Sub(newestFirst[i+1].NumericValue)
			row.Delta = &d
			row.DeltaText = utils.FormatProfitLoss(d)
			switch d.Sign() {
			case 1:
				row.Direction = DirectionUp
			case -1:
				row.Direction = DirectionDown
			default:
				row.Direction = DirectionFlat
			}
		}
		rows = append(rows, row)
	}
	return rows
}
