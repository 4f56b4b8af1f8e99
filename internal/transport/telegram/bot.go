package telegram

import (
	"context"
	"log"
	"strconv"
	"sync"

	"quizhub-service/internal/domain"
	"quizhub-service/internal/transport/command"
)

const pollTimeoutSeconds = 30

// AnswerSink receives the score-update events credited from quiz polls.
type AnswerSink interface {
	RecordAnswer(ctx context.Context, userID, poolName string, correct bool) (domain.User, error)
}

// Bot implements app.Transport over the Bot API and runs the long-poll
// update loop that feeds the command router.
type Bot struct {
	client *Client

	mu        sync.Mutex
	sentPolls map[string]sentPoll // poll id -> origin, for crediting answers

	router *command.Router
	sink   AnswerSink
}

type sentPoll struct {
	pool    string
	correct int
}

func NewBot(client *Client) *Bot {
	return &Bot{
		client:    client,
		sentPolls: make(map[string]sentPoll),
	}
}

// Attach wires the router and answer sink. Done after construction
// because the service itself needs the bot as its transport.
func (b *Bot) Attach(router *command.Router, sink AnswerSink) {
	b.router = router
	b.sink = sink
}

// SendText implements app.Transport.
func (b *Bot) SendText(ctx context.Context, chatID, text string) error {
	return b.client.SendMessage(ctx, chatID, text)
}

// SendQuestion implements app.Transport.
func (b *Bot) SendQuestion(ctx context.Context, chatID string, pool string, q domain.Question) error {
	pollID, err := b.client.SendQuizPoll(ctx, chatID, q.Text, q.Options, q.Correct)
	if err != nil {
		return err
	}
	if pollID != "" {
		b.mu.Lock()
		b.sentPolls[pollID] = sentPoll{pool: pool, correct: q.Correct}
		b.mu.Unlock()
	}
	return nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	log.Printf("telegram bot polling for updates")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := b.client.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("get updates: %v", err)
			continue
		}
		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			update := update
			go b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.PollAnswer != nil:
		b.handlePollAnswer(ctx, update.PollAnswer)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if msg.Chat == nil || msg.From == nil {
		return
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	replies := b.router.Handle(ctx, command.Event{
		ChatID:   chatID,
		UserID:   strconv.FormatInt(msg.From.ID, 10),
		Username: msg.From.Username,
		Text:     msg.Text,
	})
	for _, reply := range replies {
		if err := b.client.SendMessage(ctx, chatID, reply); err != nil {
			log.Printf("send reply to %s: %v", chatID, err)
		}
	}
}

func (b *Bot) handlePollAnswer(ctx context.Context, answer *PollAnswer) {
	if answer.User == nil || len(answer.OptionIDs) == 0 {
		return
	}
	b.mu.Lock()
	origin, ok := b.sentPolls[answer.PollID]
	b.mu.Unlock()
	if !ok {
		return
	}

	correct := answer.OptionIDs[0] == origin.correct
	userID := strconv.FormatInt(answer.User.ID, 10)
	if _, err := b.sink.RecordAnswer(ctx, userID, origin.pool, correct); err != nil {
		// Unregistered players vote too; their answers just don't count.
		if err != domain.ErrUserNotFound {
			log.Printf("record answer for %s: %v", userID, err)
		}
	}
}
