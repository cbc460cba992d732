package out

import (
	"context"

	heatout "pursue/internal/modules/heat/port/out"
	notifydto "pursue/internal/modules/notify/dto"
	notifyin "pursue/internal/modules/notify/port/in"
)

type NotifyPushAdapter struct {
	notify notifyin.Usecase
}

func NewNotifyPushAdapter(notify notifyin.Usecase) heatout.PushSender {
	return &NotifyPushAdapter{notify: notify}
}

func (a *NotifyPushAdapter) SendPush(ctx context.Context, message heatout.PushMessage) error {
	return a.notify.Send(ctx, notifydto.SendInput{
		UserID:  message.UserID,
		GroupID: message.GroupID,
		Type:    message.Type,
		Title:   message.Title,
		Body:    message.Body,
		Data:    message.Data,
	})
}
