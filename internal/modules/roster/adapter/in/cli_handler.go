package in

import (
	"context"

	"pursue/internal/modules/roster/dto"
	rosterin "pursue/internal/modules/roster/port/in"
)

type CLIHandler struct {
	usecase rosterin.Usecase
}

func NewCLIHandler(usecase rosterin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Import(ctx context.Context, path string) (dto.ImportOutput, error) {
	return h.usecase.Import(ctx, dto.ImportInput{Path: path})
}

func (h CLIHandler) CreateGroup(ctx context.Context, id, name string) (dto.GroupOutput, error) {
	return h.usecase.CreateGroup(ctx, dto.CreateGroupInput{ID: id, Name: name})
}

func (h CLIHandler) DeleteGroup(ctx context.Context, groupID string, hard bool) error {
	return h.usecase.DeleteGroup(ctx, dto.DeleteGroupInput{GroupID: groupID, Hard: hard})
}

func (h CLIHandler) ListGroups(ctx context.Context) ([]dto.GroupOutput, error) {
	return h.usecase.ListActiveGroups(ctx)
}
