package in

import (
	"context"

	"pursue/internal/modules/notify/dto"
	notifyin "pursue/internal/modules/notify/port/in"
)

type CLIHandler struct {
	usecase notifyin.Usecase
}

func NewCLIHandler(usecase notifyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Doctor(ctx context.Context) (dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Test(ctx context.Context, userID, body string) error {
	return h.usecase.Send(ctx, dto.SendInput{UserID: userID, Type: "push_test", Title: "pursue", Body: body})
}
