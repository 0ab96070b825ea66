package storage

import (
	"context"
	"path"
	"strings"
	"time"

	reportapp "github.com/ledger/backend/internal/application/report"
	"go.uber.org/zap"
)

// ReportArchive uploads rendered reports under a dated key and presigns a
// download link
type ReportArchive struct {
	store     ObjectStore
	prefix    string
	expiresIn time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportArchive creates a ReportArchive. Keys look like
// <prefix>2024/03/15/<hhmmss.nanos>_<name>.
func NewReportArchive(store ObjectStore, prefix string, expiresIn time.Duration, logger *zap.Logger) *ReportArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ReportArchive{
		store:     store,
		prefix:    prefix,
		expiresIn: expiresIn,
		logger:    logger,
		now:       time.Now,
	}
}

// Store uploads a PDF and returns its key and a download URL
func (a *ReportArchive) Store(ctx context.Context, name string, data []byte) (*reportapp.ArchivedFile, error) {
	now := a.now().UTC()
	key := a.prefix + path.Join(now.Format("2006/01/02"), strings.Join([]string{
		now.Format("150405.000000000"), path.Base(name),
	}, "_"))

	if err := a.store.Upload(ctx, key, data, "application/pdf"); err != nil {
		return nil, err
	}
	url, expiresAt, err := a.store.GenerateDownloadURL(ctx, key, a.expiresIn)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Report archived",
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return &reportapp.ArchivedFile{
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt,
	}, nil
}

var _ reportapp.Archive = (*ReportArchive)(nil)
