package usecase

import (
	"context"

	"pursue/internal/modules/notify/domain"
	"pursue/internal/modules/notify/dto"
	notifyin "pursue/internal/modules/notify/port/in"
	"pursue/internal/modules/notify/service"
)

type Interactor struct {
	svc *service.PushService
}

func NewInteractor(svc *service.PushService) notifyin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Send(ctx context.Context, input dto.SendInput) error {
	return i.svc.Send(ctx, domain.Message{
		UserID:  input.UserID,
		GroupID: input.GroupID,
		Type:    input.Type,
		Title:   input.Title,
		Body:    input.Body,
		Data:    input.Data,
	})
}

func (i *Interactor) Doctor(ctx context.Context) (dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Close() {
	i.svc.Close()
}
