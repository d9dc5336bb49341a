package services

import (
  _ "embed"
  "fmt"
  "os"
  "strings"
  "sync"

  "gopkg.in/yaml.v3"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/types"
)

//go:embed sectors.yaml
var defaultSectorData []byte

// SectorCatalog is the read-mostly benchmark lookup. Pre-loaded entries come
// from the dataset file at startup; custom entries may be appended at runtime
// and are flagged distinctly. Entries are never mutated after creation.
type SectorCatalog interface {
  List() []*types.SectorBenchmark
  GetByName(name string) (*types.SectorBenchmark, bool)
  AddCustom(benchmark types.SectorBenchmark) (*types.SectorBenchmark, error)
}

type sectorCatalog struct {
  log *logger.Logger

  mu      sync.RWMutex
  ordered []*types.SectorBenchmark
  byName  map[string]*types.SectorBenchmark
}

type sectorDataFile struct {
  Sectors []types.SectorBenchmark `yaml:"sectors"`
}

func NewSectorCatalog(log *logger.Logger) (SectorCatalog, error) {
  catalogLog := log.With("service", "SectorCatalog")

  data := defaultSectorData
  if path := os.Getenv("SECTOR_DATA_PATH"); path != "" {
    fileData, err := os.ReadFile(path)
    if err != nil {
      return nil, fmt.Errorf("read sector dataset %s: %w", path, err)
    }
    data = fileData
    catalogLog.Info("Loaded sector dataset from file", "path", path)
  }

  var parsed sectorDataFile
  if err := yaml.Unmarshal(data, &parsed); err != nil {
    return nil, fmt.Errorf("parse sector dataset: %w", err)
  }
  if len(parsed.Sectors) == 0 {
    return nil, fmt.Errorf("sector dataset contains no sectors")
  }

  c := &sectorCatalog{
    log:    catalogLog,
    byName: make(map[string]*types.SectorBenchmark, len(parsed.Sectors)),
  }
  for i := range parsed.Sectors {
    s := parsed.Sectors[i]
    s.Custom = false
    key := catalogKey(s.Name)
    if key == "" {
      return nil, fmt.Errorf("sector dataset entry %d has empty name", i)
    }
    if _, dup := c.byName[key]; dup {
      return nil, fmt.Errorf("duplicate sector name %q in dataset", s.Name)
    }
    c.ordered = append(c.ordered, &s)
    c.byName[key] = &s
  }

  catalogLog.Info("Sector catalog loaded", "count", len(c.ordered))
  return c, nil
}

func catalogKey(name string) string {
  return strings.ToLower(strings.TrimSpace(name))
}

func (c *sectorCatalog) List() []*types.SectorBenchmark {
  c.mu.RLock()
  defer c.mu.RUnlock()
  out := make([]*types.SectorBenchmark, len(c.ordered))
  copy(out, c.ordered)
  return out
}

func (c *sectorCatalog) GetByName(name string) (*types.SectorBenchmark, bool) {
  c.mu.RLock()
  defer c.mu.RUnlock()
  b, ok := c.byName[catalogKey(name)]
  return b, ok
}

func (c *sectorCatalog) AddCustom(benchmark types.SectorBenchmark) (*types.SectorBenchmark, error) {
  key := catalogKey(benchmark.Name)
  if key == "" {
    return nil, fmt.Errorf("%w: sector name required", ErrInvalidInput)
  }

  c.mu.Lock()
  defer c.mu.Unlock()
  if _, exists := c.byName[key]; exists {
    return nil, fmt.Errorf("%w: sector %q already exists", ErrInvalidInput, benchmark.Name)
  }

  benchmark.Custom = true
  entry := benchmark
  c.ordered = append(c.ordered, &entry)
  c.byName[key] = &entry
  c.log.Info("Custom sector added", "name", entry.Name)
  return &entry, nil
}
