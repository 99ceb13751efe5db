package backup

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tomwugdgz/qqtime/internal/model"
)

const (
	bom       = "\uFEFF"
	csvHeader = "时间,类型,项目,描述,投入时长(分),存折变动(分)"
	// zh-CN locale date-time, e.g. 2026/3/5 14:03:09
	csvTimeLayout = "2006/1/2 15:04:05"
)

func CSVFilename(day time.Time) string {
	return "timebank_export_" + day.Format(time.DateOnly) + ".csv"
}

// WriteCSV writes history in its stored order (newest first). The
// description column is always quoted with embedded quotes doubled; the
// other columns are written bare.
func WriteCSV(w io.Writer, txs []model.Transaction, loc *time.Location) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(bom)
	bw.WriteString(csvHeader)
	bw.WriteByte('\n')

	for _, tx := range txs {
		row := []string{
			tx.Time(loc).Format(csvTimeLayout),
			tx.Type.Label(),
			string(tx.Category),
			`"` + strings.ReplaceAll(tx.Description, `"`, `""`) + `"`,
			strconv.Itoa(tx.InputDuration),
			strconv.Itoa(tx.BankImpactMinutes),
		}
		bw.WriteString(strings.Join(row, ","))
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
