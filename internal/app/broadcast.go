package app

import (
	"context"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"quizhub-service/internal/domain"
)

// BroadcastPool fans every question of the pool out to every registered
// chat. Questions go out in pool order within a chat; chats run in
// parallel up to the configured bound. Each send is attempted once, with
// failures recorded per (chat, question) and never aborting the rest of
// the fan-out.
func (s *Service) BroadcastPool(ctx context.Context, isAdmin bool, poolName string) (domain.DeliveryReport, error) {
	if !isAdmin {
		return domain.DeliveryReport{}, domain.ErrUnauthorized
	}
	pool, err := s.pools.Get(ctx, poolName)
	if err != nil {
		return domain.DeliveryReport{}, err
	}
	chats, err := s.chats.All(ctx)
	if err != nil {
		return domain.DeliveryReport{}, err
	}

	report := domain.DeliveryReport{
		JobID: uuid.NewString(),
		Pool:  pool.Name,
		Chats: make([]domain.ChatDelivery, len(chats)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, chatID := range chats {
		i, chatID := i, chatID
		g.Go(func() error {
			delivery := domain.ChatDelivery{ChatID: chatID}
			for qi, question := range pool.Questions {
				sendCtx, cancel := context.WithTimeout(gctx, s.sendTimeout)
				err := s.transport.SendQuestion(sendCtx, chatID, pool.Name, question)
				cancel()
				if err != nil {
					delivery.Failed++
					log.Printf("broadcast %s: chat %s question %d: %v", report.JobID, chatID, qi, err)
					continue
				}
				delivery.Sent++
			}
			report.Chats[i] = delivery
			return nil
		})
	}
	// Workers only record outcomes, they never return errors.
	_ = g.Wait()

	for _, delivery := range report.Chats {
		report.Sent += delivery.Sent
		report.Failed += delivery.Failed
	}
	report.Attempted = report.Sent + report.Failed
	return report, nil
}
