package command

import (
	"fmt"
	"sort"
	"strings"

	"quizhub-service/internal/domain"
)

const (
	profileBarWidth = 10
	rankingBarWidth = 5
)

var badgeEmoji = map[string]string{
	domain.BadgeLegend:       "👑",
	domain.BadgeMaster:       "🏆",
	domain.BadgeExpert:       "🥇",
	domain.BadgeIntermediate: "🥈",
	domain.BadgeBeginner:     "🥉",
}

func badgeLabel(totalCorrect int) string {
	badge := domain.Badge(totalCorrect)
	return badgeEmoji[badge] + " " + badge
}

func renderProfile(u domain.User) string {
	var details []string
	names := make([]string, 0, len(u.ScoresByPool))
	for name := range u.ScoresByPool {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		score := u.ScoresByPool[name]
		details = append(details, fmt.Sprintf("%s: ✅ %d | ❌ %d", name, score.Correct, score.Wrong))
	}
	scoreLines := "No pool scores yet."
	if len(details) > 0 {
		scoreLines = strings.Join(details, "\n")
	}
	return fmt.Sprintf("👤 %s\n%s\n\nTotal: ✅ %d | ❌ %d\n🏅 Badge: %s\n⭐ XP: %d | Level: %d\n%s",
		u.DisplayName, scoreLines, u.TotalCorrect, u.TotalWrong,
		badgeLabel(u.TotalCorrect), u.XP, u.Level,
		domain.ProgressBar(u.XP, u.Level, profileBarWidth))
}

func renderRanking(rows []domain.LeaderboardRow) string {
	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		lines = append(lines, fmt.Sprintf("%d. %s ✅%d ❌%d %s ⭐%d (Lvl %d)\n%s",
			i+1, row.Name, row.Correct, row.Wrong,
			badgeLabel(row.Correct), row.XP, row.Level,
			domain.ProgressBar(row.XP, row.Level, rankingBarWidth)))
	}
	return strings.Join(lines, "\n")
}
