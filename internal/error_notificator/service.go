package error_notificator

import (
	"context"
	"errors"
)

type Service struct {
	infra Notificator
}

// NewService: nil infra gives a service that drops every alert
func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

func (s *Service) Notify(ctx context.Context, source string, err error, details string) error {
	if s.infra == nil {
		return nil
	}
	// unwrap to the root cause so the operator sees the transport error
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return s.infra.Notify(ctx, source, err, details)
}
