package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
	"github.com/ad714/bookmirror/internal/service"
)

type fakeCatalog struct {
	questions []domain.Market
}

func (f *fakeCatalog) Questions(ctx context.Context) ([]domain.Market, error) {
	return f.questions, nil
}

func (f *fakeCatalog) Question(ctx context.Context, id string) (domain.Market, error) {
	return domain.Market{}, domain.ErrNotFound
}

type memStore struct {
	markets map[string]domain.Market
}

func (s *memStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	for _, m := range markets {
		s.markets[m.QuestionID] = m
	}
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (domain.Market, error) {
	m, ok := s.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *memStore) ListLive(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	out := make([]domain.Market, 0, len(s.markets))
	for _, m := range s.markets {
		out = append(out, m)
	}
	return out, nil
}

func (s *memStore) Count(ctx context.Context) (int64, error) {
	return int64(len(s.markets)), nil
}

type captureBlob struct {
	path        string
	contentType string
	data        []byte
}

func (b *captureBlob) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	b.path = path
	b.contentType = contentType
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	b.data = raw
	return nil
}

func TestCatalogSyncRunArchivesSnapshot(t *testing.T) {
	q := domain.Market{
		QuestionID: "q-1",
		Header:     "Arsenal vs Chelsea",
		EndTime:    time.Now().Add(time.Hour),
	}

	logger := slog.New(slog.DiscardHandler)
	markets := service.NewMarketService(
		&fakeCatalog{questions: []domain.Market{q}},
		&memStore{markets: make(map[string]domain.Market)},
		nil, nil, logger,
	)
	blob := &captureBlob{}

	sync := NewCatalogSync(markets, nil, blob, time.Minute, logger)

	runID, err := sync.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	if !strings.HasPrefix(blob.path, "catalog/") || !strings.HasSuffix(blob.path, runID+".json") {
		t.Fatalf("archive path = %q", blob.path)
	}
	if blob.contentType != "application/json" {
		t.Fatalf("content type = %q", blob.contentType)
	}

	var snap struct {
		RunID     string          `json:"run_id"`
		Questions []domain.Market `json:"questions"`
	}
	if err := json.Unmarshal(blob.data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.RunID != runID {
		t.Errorf("snapshot run id = %q, want %q", snap.RunID, runID)
	}
	if len(snap.Questions) != 1 || snap.Questions[0].QuestionID != "q-1" {
		t.Errorf("snapshot questions = %+v", snap.Questions)
	}
}

func TestCatalogSyncRunWithoutOptionalStages(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	markets := service.NewMarketService(
		&fakeCatalog{},
		&memStore{markets: make(map[string]domain.Market)},
		nil, nil, logger,
	)

	sync := NewCatalogSync(markets, nil, nil, time.Minute, logger)
	if _, err := sync.Run(context.Background()); err != nil {
		t.Fatalf("Run without matcher and archive: %v", err)
	}
}
