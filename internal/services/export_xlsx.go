package services

import (
  "fmt"

  "github.com/xuri/excelize/v2"

  "github.com/yungbote/venturecast-backend/internal/types"
)

// RenderSpreadsheet lays the artifact out as a multi-sheet workbook. Numbers
// are written as numbers so the file stays usable for downstream modeling.
func RenderSpreadsheet(model *types.FinancialModel, artifact *types.GeneratedArtifact) ([]byte, error) {
  f := excelize.NewFile()
  defer f.Close()

  header, err := f.NewStyle(&excelize.Style{
    Font: &excelize.Font{Bold: true},
    Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
  })
  if err != nil {
    return nil, fmt.Errorf("create header style: %w", err)
  }
  money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
  if err != nil {
    return nil, fmt.Errorf("create number style: %w", err)
  }

  if err := writeSummarySheet(f, header, model, artifact); err != nil {
    return nil, err
  }
  if err := writeRevenueSheet(f, header, money, artifact.RevenueProjections); err != nil {
    return nil, err
  }
  if err := writeCashFlowSheet(f, header, money, artifact.CashFlow); err != nil {
    return nil, err
  }
  if err := writeAnnualSheet(f, header, money, artifact.AnnualProjections); err != nil {
    return nil, err
  }
  if err := writeMetricsSheet(f, header, artifact.KeyMetrics); err != nil {
    return nil, err
  }
  if err := writeRiskSheet(f, header, artifact.RiskAnalysis); err != nil {
    return nil, err
  }

  f.DeleteSheet("Sheet1")
  idx, err := f.GetSheetIndex("Summary")
  if err == nil && idx >= 0 {
    f.SetActiveSheet(idx)
  }

  buf, err := f.WriteToBuffer()
  if err != nil {
    return nil, fmt.Errorf("serialize workbook: %w", err)
  }
  return buf.Bytes(), nil
}

func writeHeaderRow(f *excelize.File, sheet string, style int, titles []string) error {
  for i, title := range titles {
    cell, err := excelize.CoordinatesToCellName(i+1, 1)
    if err != nil {
      return err
    }
    if err := f.SetCellValue(sheet, cell, title); err != nil {
      return err
    }
    if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
      return err
    }
  }
  return nil
}

func writeSummarySheet(f *excelize.File, header int, model *types.FinancialModel, artifact *types.GeneratedArtifact) error {
  const sheet = "Summary"
  if _, err := f.NewSheet(sheet); err != nil {
    return fmt.Errorf("create sheet %s: %w", sheet, err)
  }
  sector := ""
  if model.Sector != nil {
    sector = *model.Sector
  }
  rows := [][2]any{
    {"Business Idea", model.BusinessIdea},
    {"Sector", sector},
    {"Startup Cost", model.StartupCost},
    {"Monthly Revenue Estimate", model.MonthlyRevenue},
    {"Gross Margin (%)", model.GrossMargin},
    {"Monthly Operating Expenses", model.OperatingExpenses},
    {"Executive Summary", artifact.ExecutiveSummary},
  }
  for i, row := range rows {
    if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), row[0]); err != nil {
      return err
    }
    if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), row[1]); err != nil {
      return err
    }
    if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", i+1), fmt.Sprintf("A%d", i+1), header); err != nil {
      return err
    }
  }
  if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
    return err
  }
  return f.SetColWidth(sheet, "B", "B", 80)
}

func writeRevenueSheet(f *excelize.File, header, money int, rows []types.MonthlyProjection) error {
  const sheet = "Revenue Projections"
  if _, err := f.NewSheet(sheet); err != nil {
    return fmt.Errorf("create sheet %s: %w", sheet, err)
  }
  if err := writeHeaderRow(f, sheet, header, []string{"Month", "Revenue", "Costs", "Gross Profit"}); err != nil {
    return err
  }
  for i, p := range rows {
    r := i + 2
    if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", r), &[]any{p.Month, p.Revenue, p.Cost, p.GrossProfit}); err != nil {
      return err
    }
    if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", r), fmt.Sprintf("D%d", r), money); err != nil {
      return err
    }
  }
  return f.SetColWidth(sheet, "A", "D", 16)
}

func writeCashFlowSheet(f *excelize.File, header, money int, rows []types.CashFlowEntry) error {
  const sheet = "Cash Flow"
  if _, err := f.NewSheet(sheet); err != nil {
    return fmt.Errorf("create sheet %s: %w", sheet, err)
  }
  if err := writeHeaderRow(f, sheet, header, []string{"Month", "Inflow", "Outflow", "Net Cash Flow", "Cumulative Cash"}); err != nil {
    return err
  }
  for i, e := range rows {
    r := i + 2
    if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", r), &[]any{e.Month, e.Inflow, e.Outflow, e.NetCashFlow, e.CumulativeCash}); err != nil {
      return err
    }
    if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", r), fmt.Sprintf("E%d", r), money); err != nil {
      return err
    }
  }
  return f.SetColWidth(sheet, "A", "E", 16)
}

func writeAnnualSheet(f *excelize.File, header, money int, rows []types.AnnualProjection) error {
  const sheet = "Annual Projections"
  if _, err := f.NewSheet(sheet); err != nil {
    return fmt.Errorf("create sheet %s: %w", sheet, err)
  }
  if err := writeHeaderRow(f, sheet, header, []string{"Year", "Revenue", "Expenses", "Gross Profit", "Net Profit"}); err != nil {
    return err
  }
  for i, p := range rows {
    r := i + 2
    if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", r), &[]any{p.Year, p.Revenue, p.Expenses, p.GrossProfit, p.NetProfit}); err != nil {
      return err
    }
    if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", r), fmt.Sprintf("E%d", r), money); err != nil {
      return err
    }
  }
  return f.SetColWidth(sheet, "A", "E", 16)
}

func writeMetricsSheet(f *excelize.File, header int, m types.KeyMetrics) error {
  const sheet = "Key Metrics"
  if _, err := f.NewSheet(sheet); err != nil {
    return fmt.Errorf("create sheet %s: %w", sheet, err)
  }
  rows := [][2]any{
    {"Break-Even Month", m.BreakEvenMonth},
    {"Year 1 Revenue", m.Year1Revenue},
    {"Year 1 Net Profit", m.Year1NetProfit},
    {"ROI (%)", m.ROIPercent},
    {"Payback Period (Months)", m.PaybackPeriodMonths},
  }
  if m.Year5Revenue != nil {
    rows = append(rows, [2]any{"Year 5 Revenue", *m.Year5Revenue})
  }
  if m.Year5NetProfit != nil {
    rows = append(rows, [2]any{"Year 5 Net Profit", *m.Year5NetProfit})
  }
  for i, row := range rows {
    if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), row[0]); err != nil {
      return err
    }
    if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), row[1]); err != nil {
      return err
    }
    if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", i+1), fmt.Sprintf("A%d", i+1), header); err != nil {
      return err
    }
  }
  return f.SetColWidth(sheet, "A", "B", 26)
}

func writeRiskSheet(f *excelize.File, header int, rows []types.RiskEntry) error {
  const sheet = "Risk Analysis"
  if _, err := f.NewSheet(sheet); err != nil {
    return fmt.Errorf("create sheet %s: %w", sheet, err)
  }
  if err := writeHeaderRow(f, sheet, header, []string{"Risk", "Impact", "Mitigation"}); err != nil {
    return err
  }
  for i, e := range rows {
    if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &[]any{e.Risk, e.Impact, e.Mitigation}); err != nil {
      return err
    }
  }
  if err := f.SetColWidth(sheet, "A", "A", 50); err != nil {
    return err
  }
  if err := f.SetColWidth(sheet, "B", "B", 12); err != nil {
    return err
  }
  return f.SetColWidth(sheet, "C", "C", 60)
}
