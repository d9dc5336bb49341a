package services

import (
  "context"
  "fmt"
  "path/filepath"
  "strings"
  "testing"

  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/yungbote/venturecast-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  // Immediate tx lock plus a busy timeout so concurrent write transactions
  // queue up instead of failing with SQLITE_BUSY.
  dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=10000&_txlock=immediate"
  db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  if err := db.AutoMigrate(
    &types.FinancialModel{},
    &types.GenerationRun{},
    &types.ModelVersion{},
    &types.Scenario{},
  ); err != nil {
    t.Fatalf("migrate: %v", err)
  }
  return db
}

func TestMigrateSchema(t *testing.T) {
  db := newTestDB(t)
  for _, table := range []string{"financial_model", "generation_run", "model_version", "scenario"} {
    if !db.Migrator().HasTable(table) {
      t.Fatalf("table %s not created", table)
    }
  }
}

// fakeAI returns canned pipeline outputs.
type fakeAI struct {
  text    string
  textErr error
  doc     map[string]any
  jsonErr error
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
  if f.textErr != nil {
    return "", f.textErr
  }
  if f.text == "" {
    return "analysis brief", nil
  }
  return f.text, nil
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
  if f.jsonErr != nil {
    return nil, f.jsonErr
  }
  return f.doc, nil
}

// flakyStore fails Save for keys with the given suffix.
type flakyStore struct {
  FileStore
  failSuffix string
}

func (s *flakyStore) Save(ctx context.Context, key string, data []byte) error {
  if s.failSuffix != "" && strings.HasSuffix(key, s.failSuffix) {
    return fmt.Errorf("save %s: simulated failure", key)
  }
  return s.FileStore.Save(ctx, key, data)
}
