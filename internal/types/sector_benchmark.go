package types

// SectorBenchmark is a reference record describing typical financials for a
// named business sector. Pre-loaded benchmarks come from the sector dataset
// at startup; user-submitted ones carry Custom=true. Records are immutable
// once created.
type SectorBenchmark struct {
  Name              string   `yaml:"name" json:"name"`
  PersonaFit        string   `yaml:"persona_fit" json:"persona_fit"`
  AvgRevenueYear1   float64  `yaml:"avg_revenue_year1" json:"avg_revenue_year1"`
  GrossMarginTarget float64  `yaml:"gross_margin_target" json:"gross_margin_target"`
  StartupCostTotal  float64  `yaml:"startup_cost_total" json:"startup_cost_total"`
  ROIYear1          float64  `yaml:"roi_year1" json:"roi_year1"`
  IndexScore        float64  `yaml:"index_score" json:"index_score"`
  Scores            SectorScores `yaml:"scores" json:"scores"`
  CostBreakdown     []string `yaml:"cost_breakdown" json:"cost_breakdown"`
  Risks             string   `yaml:"risks" json:"risks"`
  Mitigations       string   `yaml:"mitigations" json:"mitigations"`
  Custom            bool     `yaml:"custom,omitempty" json:"custom"`
}

// SectorScores are 1-10 ratings across five fixed dimensions.
type SectorScores struct {
  Demand         int `yaml:"demand" json:"demand"`
  Competition    int `yaml:"competition" json:"competition"`
  CapitalBarrier int `yaml:"capital_barrier" json:"capital_barrier"`
  OperationsLoad int `yaml:"operations_load" json:"operations_load"`
  Scalability    int `yaml:"scalability" json:"scalability"`
}
