package in

import (
	"context"

	"pursue/internal/modules/heat/dto"
)

type Usecase interface {
	RunBatch(ctx context.Context, input dto.BatchInput) (dto.BatchOutput, error)
	CalculateGroup(ctx context.Context, input dto.CalculateInput) (dto.CalculateOutput, error)
	InitGroup(ctx context.Context, input dto.InitGroupInput) error
	Summary(ctx context.Context, groupID string) (dto.Summary, error)
	History(ctx context.Context, input dto.HistoryInput) (dto.HistoryOutput, error)
	Board(ctx context.Context) ([]dto.BoardEntry, error)
}
