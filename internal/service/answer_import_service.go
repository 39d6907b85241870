package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"interview_marker_backend/internal/model"
	"interview_marker_backend/pkg/logger"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// 答案表的列名
const (
	ColumnAnswerText  = "AnswerText"
	ColumnGPTFeedback = "GPTFeedback"
)

type AnswerWriter interface {
	ReplaceAll(ctx context.Context, answers []model.Answer) error
}

// AnswerImportService 从答案表导出的 CSV 导入，行顺序即答案顺序
type AnswerImportService struct {
	repo AnswerWriter
}

func NewAnswerImportService(repo AnswerWriter) *AnswerImportService {
	return &AnswerImportService{repo: repo}
}

// ParseCSV 第一行为表头，必须包含 AnswerText 列，GPTFeedback 列可选
func ParseCSV(r io.Reader) ([]model.Answer, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("answer sheet is empty")
		}
		return nil, err
	}

	textCol, feedbackCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case strings.ToLower(ColumnAnswerText):
			textCol = i
		case strings.ToLower(ColumnGPTFeedback):
			feedbackCol = i
		}
	}
	if textCol < 0 {
		return nil, fmt.Errorf("answer sheet has no %s column", ColumnAnswerText)
	}

	var answers []model.Answer
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		answer := model.Answer{AnswerIndex: len(answers)}
		if textCol < len(row) {
			answer.Text = row[textCol]
		}
		if feedbackCol >= 0 && feedbackCol < len(row) {
			answer.MachineFeedback = row[feedbackCol]
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (s *AnswerImportService) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	answers, err := ParseCSV(f)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.repo.ReplaceAll(ctx, answers); err != nil {
		return 0, err
	}

	logger.Log.Info("answers imported", zap.String("path", path), zap.Int("count", len(answers)))
	return len(answers), nil
}
