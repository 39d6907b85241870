package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"interview_marker_backend/internal/model"
	"interview_marker_backend/internal/util"
	"io"
	"time"
)

// ExportService 按反馈表列顺序导出 CSV
type ExportService struct {
	store   FeedbackStore
	storage *StorageService
	now     func() time.Time
}

func NewExportService(store FeedbackStore, storage *StorageService) *ExportService {
	return &ExportService{store: store, storage: storage, now: time.Now}
}

// WriteCSV 表头 + 按写入顺序的全部记录
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) (int, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(model.FeedbackSheetHeader); err != nil {
		return 0, err
	}
	for i := range records {
		if err := cw.Write(records[i].Row(util.TimeFormat)); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(records), cw.Error()
}

// Filename 导出文件名，带时间戳
func (s *ExportService) Filename() string {
	return fmt.Sprintf("feedback-%s.csv", s.now().Format("20060102-150405"))
}

// Upload 导出到配置的存储，返回访问地址
func (s *ExportService) Upload(ctx context.Context) (string, int, error) {
	var buf bytes.Buffer
	n, err := s.WriteCSV(ctx, &buf)
	if err != nil {
		return "", 0, err
	}

	url, err := s.storage.Upload(ctx, "exports/"+s.Filename(), bytes.NewReader(buf.Bytes()), int64(buf.Len()), util.MimeCSV)
	if err != nil {
		return "", 0, err
	}
	return url, n, nil
}
