package services

import (
  "errors"
  "testing"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/types"
)

func TestSectorCatalog_LoadsEmbeddedDataset(t *testing.T) {
  catalog, err := NewSectorCatalog(logger.NewNop())
  if err != nil {
    t.Fatalf("NewSectorCatalog: %v", err)
  }
  sectors := catalog.List()
  if len(sectors) == 0 {
    t.Fatalf("expected pre-loaded sectors")
  }
  for _, s := range sectors {
    if s.Custom {
      t.Fatalf("pre-loaded sector %q must not be flagged custom", s.Name)
    }
  }
}

func TestSectorCatalog_GetByNameCaseInsensitive(t *testing.T) {
  catalog, err := NewSectorCatalog(logger.NewNop())
  if err != nil {
    t.Fatalf("NewSectorCatalog: %v", err)
  }
  for _, name := range []string{"Coffee Shop", "coffee shop", "  COFFEE SHOP  "} {
    b, ok := catalog.GetByName(name)
    if !ok {
      t.Fatalf("GetByName(%q): not found", name)
    }
    if b.Name != "Coffee Shop" {
      t.Fatalf("GetByName(%q): got %q", name, b.Name)
    }
  }
  if _, ok := catalog.GetByName("Underwater Basket Weaving"); ok {
    t.Fatalf("unknown sector should not resolve")
  }
}

func TestSectorCatalog_AddCustom(t *testing.T) {
  catalog, err := NewSectorCatalog(logger.NewNop())
  if err != nil {
    t.Fatalf("NewSectorCatalog: %v", err)
  }
  before := len(catalog.List())

  created, err := catalog.AddCustom(types.SectorBenchmark{Name: "Pet Grooming", AvgRevenueYear1: 90000})
  if err != nil {
    t.Fatalf("AddCustom: %v", err)
  }
  if !created.Custom {
    t.Fatalf("custom sector must be flagged custom")
  }
  if len(catalog.List()) != before+1 {
    t.Fatalf("custom sector not listed")
  }
  if b, ok := catalog.GetByName("pet grooming"); !ok || b.AvgRevenueYear1 != 90000 {
    t.Fatalf("custom sector not retrievable")
  }

  if _, err := catalog.AddCustom(types.SectorBenchmark{Name: "pet GROOMING"}); !errors.Is(err, ErrInvalidInput) {
    t.Fatalf("duplicate name should be rejected, got %v", err)
  }
  if _, err := catalog.AddCustom(types.SectorBenchmark{Name: "   "}); !errors.Is(err, ErrInvalidInput) {
    t.Fatalf("empty name should be rejected, got %v", err)
  }
}
