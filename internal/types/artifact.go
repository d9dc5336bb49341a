package types

// GeneratedArtifact is the structured financial model produced by the
// generation pipeline. It is stored on FinancialModel as a jsonb blob and
// has no table of its own.
type GeneratedArtifact struct {
  ExecutiveSummary   string              `json:"executive_summary"`
  RevenueProjections []MonthlyProjection `json:"revenue_projections"`
  CashFlow           []CashFlowEntry     `json:"cash_flow"`
  AnnualProjections  []AnnualProjection  `json:"annual_projections"`
  KeyMetrics         KeyMetrics          `json:"key_metrics"`
  RiskAnalysis       []RiskEntry         `json:"risk_analysis"`
  Recommendations    []string            `json:"recommendations"`
}

type MonthlyProjection struct {
  Month       int     `json:"month"`
  Revenue     float64 `json:"revenue"`
  Cost        float64 `json:"cost"`
  GrossProfit float64 `json:"gross_profit"`
}

type CashFlowEntry struct {
  Month          int     `json:"month"`
  Inflow         float64 `json:"inflow"`
  Outflow        float64 `json:"outflow"`
  NetCashFlow    float64 `json:"net_cash_flow"`
  CumulativeCash float64 `json:"cumulative_cash"`
}

type AnnualProjection struct {
  Year        int     `json:"year"`
  Revenue     float64 `json:"revenue"`
  Expenses    float64 `json:"expenses"`
  GrossProfit float64 `json:"gross_profit"`
  NetProfit   float64 `json:"net_profit"`
}

type KeyMetrics struct {
  BreakEvenMonth      int      `json:"break_even_month"`
  Year1Revenue        float64  `json:"year1_revenue"`
  Year1NetProfit      float64  `json:"year1_net_profit"`
  ROIPercent          float64  `json:"roi_percent"`
  PaybackPeriodMonths float64  `json:"payback_period_months"`
  Year5Revenue        *float64 `json:"year5_revenue,omitempty"`
  Year5NetProfit      *float64 `json:"year5_net_profit,omitempty"`
}

type RiskEntry struct {
  Risk       string `json:"risk"`
  Impact     string `json:"impact"`
  Mitigation string `json:"mitigation"`
}
