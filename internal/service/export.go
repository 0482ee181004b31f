package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var csvHeader = []string{"訂單編號", "時間", "顧客姓名", "電話", "桌號", "總金額", "狀態", "內容摘要"}

// csvTimeLayout matches how the admin panel shows order times.
const csvTimeLayout = "2006/1/2 15:04:05"

// WriteOrdersCSV writes orders as a UTF-8 CSV with a byte order mark so
// spreadsheet apps pick the right encoding. Takeaway orders without a table
// show 外帶 in the table column.
func (s *OrderService) WriteOrdersCSV(w io.Writer, orders []Order) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range orders {
		table := o.CustomerInfo.TableNumber
		if table == "" {
			table = "外帶"
		}
		items := make([]string, len(o.Items))
		for i, l := range o.Items {
			items[i] = fmt.Sprintf("%s x%d", l.Item.Name, l.Quantity)
		}
		record := []string{
			o.ID,
			o.CreatedAt.In(s.loc).Format(csvTimeLayout),
			o.CustomerInfo.Name,
			o.CustomerInfo.Phone,
			table,
			o.TotalPrice.String(),
			o.Status,
			strings.Join(items, "; "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write order %s: %w", o.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
