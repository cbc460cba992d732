package in

import (
	"context"

	"pursue/internal/modules/notify/dto"
)

type Usecase interface {
	Send(ctx context.Context, input dto.SendInput) error
	Doctor(ctx context.Context) (dto.DoctorResult, error)
	Close()
}
