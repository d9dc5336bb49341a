package services

import (
  "math"

  "github.com/yungbote/venturecast-backend/internal/types"
)

// Growth multipliers applied when padding short monthly arrays: each
// synthesized month extends the last present entry, never interpolates.
const (
  padRevenueGrowth = 1.05
  padCostGrowth    = 1.03
  padProfitGrowth  = 1.07
)

// Revenue and expense multipliers for reconstructed annual projections,
// applied to the year-1 figures. Fixed globals regardless of sector.
var (
  annualRevenueMultipliers = [4]float64{1.4, 1.9, 2.5, 3.2}
  annualExpenseMultipliers = [4]float64{1.3, 1.6, 2.0, 2.5}
)

const (
  breakEvenMonthMin = 1
  breakEvenMonthMax = 24
)

// RepairArtifact is the validation stage of the pipeline: purely local,
// deterministic repair of the parsed artifact. It never fails; anomalies
// degrade to a best-effort result or an empty sub-array.
func RepairArtifact(a *types.GeneratedArtifact) *types.GeneratedArtifact {
  if a == nil {
    return nil
  }

  padRevenueProjections(a)
  padCashFlow(a)
  repairAnnualProjections(a)
  backfillYear5Metrics(a)

  if a.KeyMetrics.BreakEvenMonth < breakEvenMonthMin {
    a.KeyMetrics.BreakEvenMonth = breakEvenMonthMin
  }
  if a.KeyMetrics.BreakEvenMonth > breakEvenMonthMax {
    a.KeyMetrics.BreakEvenMonth = breakEvenMonthMax
  }

  return a
}

func padRevenueProjections(a *types.GeneratedArtifact) {
  if len(a.RevenueProjections) == 0 || len(a.RevenueProjections) >= 12 {
    if len(a.RevenueProjections) > 12 {
      a.RevenueProjections = a.RevenueProjections[:12]
    }
    return
  }
  for len(a.RevenueProjections) < 12 {
    last := a.RevenueProjections[len(a.RevenueProjections)-1]
    a.RevenueProjections = append(a.RevenueProjections, types.MonthlyProjection{
      Month:       last.Month + 1,
      Revenue:     last.Revenue * padRevenueGrowth,
      Cost:        last.Cost * padCostGrowth,
      GrossProfit: last.GrossProfit * padProfitGrowth,
    })
  }
}

func padCashFlow(a *types.GeneratedArtifact) {
  if len(a.CashFlow) == 0 || len(a.CashFlow) >= 12 {
    if len(a.CashFlow) > 12 {
      a.CashFlow = a.CashFlow[:12]
    }
    return
  }
  for len(a.CashFlow) < 12 {
    last := a.CashFlow[len(a.CashFlow)-1]
    net := last.NetCashFlow * padProfitGrowth
    a.CashFlow = append(a.CashFlow, types.CashFlowEntry{
      Month:          last.Month + 1,
      Inflow:         last.Inflow * padRevenueGrowth,
      Outflow:        last.Outflow * padCostGrowth,
      NetCashFlow:    net,
      CumulativeCash: last.CumulativeCash + net,
    })
  }
}

// repairAnnualProjections forces the annual array to exactly 5 entries.
// Reconstruction only runs when the year-1 revenue and net profit are both
// finite and revenue >= net profit; otherwise the array is set to empty.
func repairAnnualProjections(a *types.GeneratedArtifact) {
  if len(a.AnnualProjections) == 5 {
    return
  }

  revenue := a.KeyMetrics.Year1Revenue
  netProfit := a.KeyMetrics.Year1NetProfit
  if !isFinite(revenue) || !isFinite(netProfit) || revenue < netProfit {
    a.AnnualProjections = []types.AnnualProjection{}
    return
  }

  expenses := revenue - netProfit
  projections := make([]types.AnnualProjection, 0, 5)
  projections = append(projections, types.AnnualProjection{
    Year:        1,
    Revenue:     revenue,
    Expenses:    expenses,
    GrossProfit: netProfit,
    NetProfit:   netProfit,
  })
  for i := 0; i < 4; i++ {
    r := revenue * annualRevenueMultipliers[i]
    e := expenses * annualExpenseMultipliers[i]
    projections = append(projections, types.AnnualProjection{
      Year:        i + 2,
      Revenue:     r,
      Expenses:    e,
      GrossProfit: r - e,
      NetProfit:   r - e,
    })
  }
  a.AnnualProjections = projections
}

// backfillYear5Metrics fills the optional year-5 key metrics from the last
// annual entry, only when the annual array has exactly 5 entries.
func backfillYear5Metrics(a *types.GeneratedArtifact) {
  if len(a.AnnualProjections) != 5 {
    return
  }
  last := a.AnnualProjections[4]
  if a.KeyMetrics.Year5Revenue == nil || !isFinite(*a.KeyMetrics.Year5Revenue) {
    v := last.Revenue
    a.KeyMetrics.Year5Revenue = &v
  }
  if a.KeyMetrics.Year5NetProfit == nil || !isFinite(*a.KeyMetrics.Year5NetProfit) {
    v := last.NetProfit
    a.KeyMetrics.Year5NetProfit = &v
  }
}

func isFinite(f float64) bool {
  return !math.IsNaN(f) && !math.IsInf(f, 0)
}
