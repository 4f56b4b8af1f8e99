// Package command maps inbound chat events onto the application use
// cases and renders the replies. Both the Telegram poller and the
// websocket emulator drive the same router.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// Event is one inbound message from a chat platform.
type Event struct {
	ChatID   string
	UserID   string
	Username string
	Text     string
}

// Router dispatches events. AdminUser is the platform username allowed to
// run /broadcast and /uploadpool; empty means nobody is admin.
type Router struct {
	service   *app.Service
	adminUser string
}

func NewRouter(service *app.Service, adminUser string) *Router {
	return &Router{service: service, adminUser: adminUser}
}

// Handle processes one event and returns the reply lines to send back to
// the originating chat. It never returns an error: every failure becomes
// a user-visible message or is logged and swallowed.
func (r *Router) Handle(ctx context.Context, ev Event) []string {
	// Every inbound event marks its chat as known.
	if _, err := r.service.TrackChat(ctx, ev.ChatID); err != nil {
		log.Printf("track chat %s: %v", ev.ChatID, err)
	}

	text := strings.TrimSpace(ev.Text)
	if !strings.HasPrefix(text, "/") {
		return r.handleSessionInput(ctx, ev, text)
	}

	cmd, args := splitCommand(text)
	switch cmd {
	case "/start":
		return []string{"👋 Welcome!\nUse /help to see all commands."}
	case "/help":
		return []string{helpText}
	case "/signup":
		return r.handleSignup(ctx, ev, args)
	case "/myscore":
		return r.handleMyScore(ctx, ev)
	case "/listpools":
		return r.handleListPools(ctx)
	case "/leaderboard":
		return r.handleLeaderboard(ctx, args)
	case "/topplayers":
		return r.handleTopPlayers(ctx)
	case "/quiz":
		return r.handleQuizStart(ctx, ev)
	case "/cancel":
		return r.handleCancel(ctx, ev)
	case "/broadcast":
		return r.handleBroadcast(ctx, ev, args)
	case "/uploadpool":
		return r.handleUploadPool(ctx, ev, args)
	default:
		return []string{"Unknown command. Use /help to see all commands."}
	}
}

const helpText = "/start – Welcome message\n" +
	"/help – List all commands\n" +
	"/signup <name> – Register\n" +
	"/myscore – Show your score\n" +
	"/quiz – Play a quiz (interactive)\n" +
	"/cancel – Cancel the current quiz\n" +
	"/listpools – Show available pools\n" +
	"/leaderboard <pool_name> – Show pool leaderboard\n" +
	"/topplayers – Show global leaderboard\n" +
	"/uploadpool <json> – Admin only: upload new pool\n" +
	"/broadcast <pool_name> – Admin only: broadcast a pool"

func (r *Router) handleSignup(ctx context.Context, ev Event, args string) []string {
	if args == "" {
		return []string{"Usage: /signup <Your Name>"}
	}
	user, err := r.service.Register(ctx, ev.UserID, args)
	switch {
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return []string{"✅ Already registered."}
	case err != nil:
		return []string{"Something went wrong, try again later."}
	}
	return []string{fmt.Sprintf("🎉 Registered as %s!", user.DisplayName)}
}

func (r *Router) handleMyScore(ctx context.Context, ev Event) []string {
	user, err := r.service.Profile(ctx, ev.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return []string{"❌ Not registered. Use /signup first."}
	}
	if err != nil {
		return []string{"Something went wrong, try again later."}
	}
	return []string{renderProfile(user)}
}

func (r *Router) handleListPools(ctx context.Context) []string {
	names, err := r.service.ListPools(ctx)
	if err != nil {
		return []string{"Something went wrong, try again later."}
	}
	if len(names) == 0 {
		return []string{"No pools available."}
	}
	return []string{"Available Pools:\n" + strings.Join(names, "\n")}
}

func (r *Router) handleLeaderboard(ctx context.Context, args string) []string {
	if args == "" {
		return []string{"Usage: /leaderboard <pool_name>"}
	}
	rows, err := r.service.Leaderboard(ctx, args)
	if err != nil {
		return []string{"Something went wrong, try again later."}
	}
	if len(rows) == 0 {
		return []string{fmt.Sprintf("No scores yet for '%s'.", args)}
	}
	return []string{fmt.Sprintf("🏆 Leaderboard: %s\n%s", args, renderRanking(rows))}
}

func (r *Router) handleTopPlayers(ctx context.Context) []string {
	rows, err := r.service.TopPlayers(ctx)
	if err != nil {
		return []string{"Something went wrong, try again later."}
	}
	if len(rows) == 0 {
		return []string{"No users with scores yet."}
	}
	return []string{"🌍 Global Leaderboard\n" + renderRanking(rows)}
}

func (r *Router) handleQuizStart(ctx context.Context, ev Event) []string {
	names, err := r.service.StartQuiz(ctx, ev.ChatID, ev.UserID)
	if errors.Is(err, domain.ErrNoPools) {
		return []string{"❌ No pools available."}
	}
	if err != nil {
		return []string{"Something went wrong, try again later."}
	}
	return []string{"Which pool do you want to play?\nAvailable pools:\n" + strings.Join(names, "\n")}
}

func (r *Router) handleSessionInput(ctx context.Context, ev Event, text string) []string {
	if text == "" {
		return nil
	}
	err := r.service.SubmitQuizInput(ctx, ev.ChatID, ev.UserID, text)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		// Plain text outside a quiz conversation is ignored.
		return nil
	case errors.Is(err, domain.ErrPoolNotFound):
		return []string{fmt.Sprintf("❌ Pool '%s' not found. Try again.", text)}
	case errors.Is(err, domain.ErrDeliveryFailed):
		return []string{"❌ Could not deliver the question, quiz aborted."}
	case err != nil:
		return []string{"Something went wrong, try again later."}
	}
	// Question delivered by the transport itself.
	return nil
}

func (r *Router) handleCancel(ctx context.Context, ev Event) []string {
	if err := r.service.CancelQuiz(ctx, ev.ChatID, ev.UserID); err != nil {
		return []string{"No quiz in progress."}
	}
	return []string{"Quiz cancelled."}
}

func (r *Router) handleBroadcast(ctx context.Context, ev Event, args string) []string {
	if !r.isAdmin(ev) {
		return []string{"❌ Unauthorized."}
	}
	if args == "" {
		return []string{"Usage: /broadcast <pool_name>"}
	}
	report, err := r.service.BroadcastPool(ctx, true, args)
	switch {
	case errors.Is(err, domain.ErrPoolNotFound):
		return []string{fmt.Sprintf("❌ Pool '%s' not found.", args)}
	case err != nil:
		return []string{"Something went wrong, try again later."}
	}
	return []string{fmt.Sprintf("✅ Broadcast completed! Delivered %d of %d (%d failed).",
		report.Sent, report.Attempted, report.Failed)}
}

func (r *Router) handleUploadPool(ctx context.Context, ev Event, args string) []string {
	if !r.isAdmin(ev) {
		return []string{"❌ Unauthorized."}
	}
	if args == "" {
		return []string{`Usage: /uploadpool {"name":"...","questions":[...]}`}
	}
	var pool domain.Pool
	if err := json.Unmarshal([]byte(args), &pool); err != nil {
		return []string{"❌ Invalid pool JSON."}
	}
	if err := r.service.UploadPool(ctx, true, pool); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return []string{"❌ Invalid pool: every question needs options and a valid answer index."}
		}
		return []string{"Something went wrong, try again later."}
	}
	return []string{fmt.Sprintf("✅ Pool '%s' uploaded with %d questions.", pool.Name, len(pool.Questions))}
}

func (r *Router) isAdmin(ev Event) bool {
	return r.adminUser != "" && ev.Username == r.adminUser
}

func splitCommand(text string) (string, string) {
	parts := strings.SplitN(text, " ", 2)
	cmd := parts[0]
	// strip the @botname suffix Telegram appends in groups
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	if len(parts) == 1 {
		return cmd, ""
	}
	return cmd, strings.TrimSpace(parts[1])
}
