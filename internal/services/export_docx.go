package services

import (
  "archive/zip"
  "bytes"
  "encoding/xml"
  "fmt"
  "strings"

  "github.com/yungbote/venturecast-backend/internal/types"
)

// RenderDocument writes the narrative report as a WordprocessingML package.
// Only the three mandatory parts are emitted; that is enough for Word,
// LibreOffice and Google Docs to open the file.
func RenderDocument(model *types.FinancialModel, artifact *types.GeneratedArtifact) ([]byte, error) {
  var body strings.Builder
  w := docxWriter{b: &body}

  w.heading(1, "Business Financial Report")
  w.paragraph(model.BusinessIdea)
  if model.Sector != nil && *model.Sector != "" {
    w.paragraph(fmt.Sprintf("Sector: %s", *model.Sector))
  }

  w.heading(2, "Executive Summary")
  w.paragraph(artifact.ExecutiveSummary)

  w.heading(2, "Key Metrics")
  m := artifact.KeyMetrics
  w.bullet(fmt.Sprintf("Break-even month: %d", m.BreakEvenMonth))
  w.bullet(fmt.Sprintf("Year 1 revenue: %s", formatMoney(m.Year1Revenue)))
  w.bullet(fmt.Sprintf("Year 1 net profit: %s", formatMoney(m.Year1NetProfit)))
  w.bullet(fmt.Sprintf("ROI: %.1f%%", m.ROIPercent))
  w.bullet(fmt.Sprintf("Payback period: %.1f months", m.PaybackPeriodMonths))
  if m.Year5Revenue != nil {
    w.bullet(fmt.Sprintf("Year 5 revenue: %s", formatMoney(*m.Year5Revenue)))
  }
  if m.Year5NetProfit != nil {
    w.bullet(fmt.Sprintf("Year 5 net profit: %s", formatMoney(*m.Year5NetProfit)))
  }

  if len(artifact.AnnualProjections) > 0 {
    w.heading(2, "Five-Year Outlook")
    for _, p := range artifact.AnnualProjections {
      w.bullet(fmt.Sprintf("Year %d: revenue %s, expenses %s, net profit %s",
        p.Year, formatMoney(p.Revenue), formatMoney(p.Expenses), formatMoney(p.NetProfit)))
    }
  }

  if len(artifact.RiskAnalysis) > 0 {
    w.heading(2, "Risk Analysis")
    for _, r := range artifact.RiskAnalysis {
      w.bullet(fmt.Sprintf("%s (%s): %s", r.Risk, r.Impact, r.Mitigation))
    }
  }

  if len(artifact.Recommendations) > 0 {
    w.heading(2, "Recommendations")
    for _, r := range artifact.Recommendations {
      w.bullet(r)
    }
  }

  return packDocx(body.String())
}

func formatMoney(v float64) string {
  return fmt.Sprintf("$%.2f", v)
}

type docxWriter struct {
  b *strings.Builder
}

func (w docxWriter) heading(level int, text string) {
  fmt.Fprintf(w.b,
    `<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr><w:r><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
    level, 36-level*4, escapeXML(text))
}

func (w docxWriter) paragraph(text string) {
  fmt.Fprintf(w.b,
    `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
    escapeXML(text))
}

func (w docxWriter) bullet(text string) {
  fmt.Fprintf(w.b,
    `<w:p><w:pPr><w:ind w:left="360"/></w:pPr><w:r><w:t xml:space="preserve">%s %s</w:t></w:r></w:p>`,
    "•", escapeXML(text))
}

func escapeXML(s string) string {
  var buf bytes.Buffer
  _ = xml.EscapeText(&buf, []byte(s))
  return buf.String()
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const docxDocumentTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s<w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr></w:body></w:document>`

func packDocx(body string) ([]byte, error) {
  var buf bytes.Buffer
  zw := zip.NewWriter(&buf)
  parts := []struct {
    name    string
    content string
  }{
    {"[Content_Types].xml", docxContentTypes},
    {"_rels/.rels", docxRootRels},
    {"word/document.xml", fmt.Sprintf(docxDocumentTemplate, body)},
  }
  for _, p := range parts {
    f, err := zw.Create(p.name)
    if err != nil {
      return nil, fmt.Errorf("create docx part %s: %w", p.name, err)
    }
    if _, err := f.Write([]byte(p.content)); err != nil {
      return nil, fmt.Errorf("write docx part %s: %w", p.name, err)
    }
  }
  if err := zw.Close(); err != nil {
    return nil, fmt.Errorf("finalize docx package: %w", err)
  }
  return buf.Bytes(), nil
}
