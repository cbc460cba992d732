package in

import (
	"context"
	"time"

	"pursue/internal/modules/heat/dto"
	heatin "pursue/internal/modules/heat/port/in"
)

type CLIHandler struct {
	usecase heatin.Usecase
}

func NewCLIHandler(usecase heatin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Run(ctx context.Context, date *time.Time) (dto.BatchOutput, error) {
	return h.usecase.RunBatch(ctx, dto.BatchInput{Date: date})
}

func (h CLIHandler) Calculate(ctx context.Context, groupID string, date *time.Time) (dto.CalculateOutput, error) {
	return h.usecase.CalculateGroup(ctx, dto.CalculateInput{GroupID: groupID, Date: date})
}

func (h CLIHandler) Show(ctx context.Context, groupID string) (dto.Summary, error) {
	return h.usecase.Summary(ctx, groupID)
}

func (h CLIHandler) Board(ctx context.Context) ([]dto.BoardEntry, error) {
	return h.usecase.Board(ctx)
}

func (h CLIHandler) History(ctx context.Context, groupID, userID string, days int) (dto.HistoryOutput, error) {
	return h.usecase.History(ctx, dto.HistoryInput{GroupID: groupID, CallerID: userID, Days: days})
}
