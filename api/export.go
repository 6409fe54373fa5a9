package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"expensebook/database"
	"expensebook/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	expenses *service.ExpenseService
}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{
		expenses: service.NewExpenseService(database.GetDB()),
	}
}

// parseExportRange 解析导出的日期区间，end 含当天
func (h *ExportHandler) parseExportRange(c *gin.Context) (start, end time.Time, ok bool) {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" || endStr == "" {
		c.HTML(http.StatusBadRequest, "error.html", pageData(c, gin.H{
			"Title":   "参数错误",
			"Message": "请提供开始日期和结束日期",
		}))
		return
	}

	start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", pageData(c, gin.H{
			"Title":   "参数错误",
			"Message": "开始日期格式错误，应为: 2006-01-02",
		}))
		return
	}
	end, err = time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", pageData(c, gin.H{
			"Title":   "参数错误",
			"Message": "结束日期格式错误，应为: 2006-01-02",
		}))
		return
	}
	// 包含结束日期当天
	end = end.Add(24*time.Hour - time.Second)
	return start, end, true
}

// ExportCSV 导出当前用户的消费记录为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	start, end, ok := h.parseExportRange(c)
	if !ok {
		return
	}

	expenses, err := h.expenses.FindInRange(user, start, end)
	if err != nil {
		internalError(c, err, "查询数据失败")
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "日期", "类别", "金额", "描述"}
	if err := writer.Write(headers); err != nil {
		internalError(c, err, "生成 CSV 失败")
		return
	}

	for i := range expenses {
		expense := &expenses[i]
		row := []string{
			fmt.Sprintf("%d", expense.ID),
			expense.ExpenseDate.Format("2006-01-02"),
			expense.Category,
			expense.AmountString(),
			expense.Description,
		}
		if err := writer.Write(row); err != nil {
			internalError(c, err, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		internalError(c, err, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.csv", c.Query("start"), c.Query("end"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出当前用户的消费记录为 Excel
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	start, end, ok := h.parseExportRange(c)
	if !ok {
		return
	}

	expenses, err := h.expenses.FindInRange(user, start, end)
	if err != nil {
		internalError(c, err, "查询数据失败")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "消费记录"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 36)

	headers := []string{"ID", "日期", "类别", "金额", "描述"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var totalCents int64
	for i := range expenses {
		expense := &expenses[i]
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), expense.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), expense.ExpenseDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), expense.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), float64(expense.AmountCents)/100)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), expense.Description)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), dataStyle)
		totalCents += expense.AmountCents
	}

	// 汇总行
	summaryRow := len(expenses) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("C%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", summaryRow), float64(totalCents)/100)
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(expenses)))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("E%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("expenses_%s_%s.xlsx", c.Query("start"), c.Query("end"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := f.Write(c.Writer); err != nil {
		internalError(c, err, "生成 Excel 失败")
		return
	}
}
