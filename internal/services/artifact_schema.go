package services

import (
  "encoding/json"
  "fmt"
  "strings"

  "github.com/xeipuuv/gojsonschema"

  "github.com/yungbote/venturecast-backend/internal/types"
)

func monthlyProjectionSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "month":        map[string]any{"type": "integer"},
      "revenue":      map[string]any{"type": "number"},
      "cost":         map[string]any{"type": "number"},
      "gross_profit": map[string]any{"type": "number"},
    },
    "required":             []string{"month", "revenue", "cost", "gross_profit"},
    "additionalProperties": false,
  }
}

func cashFlowEntrySchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "month":           map[string]any{"type": "integer"},
      "inflow":          map[string]any{"type": "number"},
      "outflow":         map[string]any{"type": "number"},
      "net_cash_flow":   map[string]any{"type": "number"},
      "cumulative_cash": map[string]any{"type": "number"},
    },
    "required":             []string{"month", "inflow", "outflow", "net_cash_flow", "cumulative_cash"},
    "additionalProperties": false,
  }
}

func annualProjectionSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "year":         map[string]any{"type": "integer"},
      "revenue":      map[string]any{"type": "number"},
      "expenses":     map[string]any{"type": "number"},
      "gross_profit": map[string]any{"type": "number"},
      "net_profit":   map[string]any{"type": "number"},
    },
    "required":             []string{"year", "revenue", "expenses", "gross_profit", "net_profit"},
    "additionalProperties": false,
  }
}

// artifactSchema is the structured-output contract for the model-construction
// stage. Monthly arrays require at least one entry so the validation stage
// always has a base to extend; exact lengths are repaired, not enforced here.
func artifactSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "executive_summary": map[string]any{"type": "string"},
      "revenue_projections": map[string]any{
        "type":     "array",
        "items":    monthlyProjectionSchema(),
        "minItems": 1,
      },
      "cash_flow": map[string]any{
        "type":     "array",
        "items":    cashFlowEntrySchema(),
        "minItems": 1,
      },
      "annual_projections": map[string]any{
        "type":  "array",
        "items": annualProjectionSchema(),
      },
      "key_metrics": map[string]any{
        "type": "object",
        "properties": map[string]any{
          "break_even_month":      map[string]any{"type": "integer"},
          "year1_revenue":         map[string]any{"type": "number"},
          "year1_net_profit":      map[string]any{"type": "number"},
          "roi_percent":           map[string]any{"type": "number"},
          "payback_period_months": map[string]any{"type": "number"},
          "year5_revenue":         map[string]any{"type": []string{"number", "null"}},
          "year5_net_profit":      map[string]any{"type": []string{"number", "null"}},
        },
        "required":             []string{"break_even_month", "year1_revenue", "year1_net_profit", "roi_percent", "payback_period_months", "year5_revenue", "year5_net_profit"},
        "additionalProperties": false,
      },
      "risk_analysis": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "risk":       map[string]any{"type": "string"},
            "impact":     map[string]any{"type": "string"},
            "mitigation": map[string]any{"type": "string"},
          },
          "required":             []string{"risk", "impact", "mitigation"},
          "additionalProperties": false,
        },
      },
      "recommendations": map[string]any{
        "type":  "array",
        "items": map[string]any{"type": "string"},
      },
    },
    "required":             []string{"executive_summary", "revenue_projections", "cash_flow", "annual_projections", "key_metrics", "risk_analysis", "recommendations"},
    "additionalProperties": false,
  }
}

// decodeArtifact runs the post-parse schema pass over the raw modeler output
// and decodes it into the typed artifact. Shape failures come back as
// ErrArtifactShape so they are reportable separately from transport errors.
func decodeArtifact(raw map[string]any) (*types.GeneratedArtifact, error) {
  docJSON, err := json.Marshal(raw)
  if err != nil {
    return nil, fmt.Errorf("marshal modeler output: %w", err)
  }
  schemaJSON, err := json.Marshal(artifactSchema())
  if err != nil {
    return nil, fmt.Errorf("marshal artifact schema: %w", err)
  }

  result, err := gojsonschema.Validate(
    gojsonschema.NewBytesLoader(schemaJSON),
    gojsonschema.NewBytesLoader(docJSON),
  )
  if err != nil {
    return nil, fmt.Errorf("validate artifact: %w", err)
  }
  if !result.Valid() {
    issues := make([]string, 0, len(result.Errors()))
    for _, re := range result.Errors() {
      issues = append(issues, re.String())
    }
    return nil, fmt.Errorf("%w: %s", ErrArtifactShape, strings.Join(issues, "; "))
  }

  var artifact types.GeneratedArtifact
  if err := json.Unmarshal(docJSON, &artifact); err != nil {
    return nil, fmt.Errorf("%w: %v", ErrArtifactShape, err)
  }
  return &artifact, nil
}
