package usecase

import (
	"context"

	"github.com/google/uuid"

	reqdto "trimline/internal/handler/dto/request"
	"trimline/internal/notification"
	"trimline/internal/pkg/errs"
)

type PushSubscriptionRepository interface {
	Save(ctx context.Context, sub notification.Subscription) error
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type PushUseCase interface {
	Subscribe(ctx context.Context, customerID uuid.UUID, req reqdto.PushSubscribeRequest) error
	Unsubscribe(ctx context.Context, endpoint string) error
	VAPIDPublicKey() string
}

type pushUseCaseImpl struct {
	repo      PushSubscriptionRepository
	publicKey string
}

func NewPushUseCase(repo PushSubscriptionRepository, vapidPublicKey string) PushUseCase {
	return &pushUseCaseImpl{repo: repo, publicKey: vapidPublicKey}
}

func (u *pushUseCaseImpl) Subscribe(ctx context.Context, customerID uuid.UUID, req reqdto.PushSubscribeRequest) error {
	err := u.repo.Save(ctx, notification.Subscription{
		CustomerID: customerID,
		Endpoint:   req.Endpoint,
		P256DH:     req.Keys.P256DH,
		Auth:       req.Keys.Auth,
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func (u *pushUseCaseImpl) Unsubscribe(ctx context.Context, endpoint string) error {
	if err := u.repo.DeleteByEndpoint(ctx, endpoint); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func (u *pushUseCaseImpl) VAPIDPublicKey() string {
	return u.publicKey
}
