package app

import (
	"context"
	"sort"

	"quizhub-service/internal/domain"
)

const leaderboardSize = 10

// Leaderboard ranks users by their score within a single pool. XP and
// level are recomputed as if that pool were the user's whole history.
// Users without an attempt in the pool are excluded; an empty result is
// valid, not an error.
func (s *Service) Leaderboard(ctx context.Context, poolName string) ([]domain.LeaderboardRow, error) {
	if poolName == "" {
		return nil, domain.ErrInvalidInput
	}
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.LeaderboardRow, 0, len(users))
	for _, u := range users {
		score, ok := u.ScoresByPool[poolName]
		if !ok || score.Correct+score.Wrong == 0 {
			continue
		}
		xp, level, correct, wrong := domain.ComputeProgress(map[string]domain.Score{poolName: score})
		rows = append(rows, domain.LeaderboardRow{
			Name:    u.DisplayName,
			Correct: correct,
			Wrong:   wrong,
			XP:      xp,
			Level:   level,
		})
	}
	return rank(rows), nil
}

// TopPlayers ranks users globally using their recorded totals.
func (s *Service) TopPlayers(ctx context.Context) ([]domain.LeaderboardRow, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.LeaderboardRow, 0, len(users))
	for _, u := range users {
		if u.TotalCorrect+u.TotalWrong == 0 {
			continue
		}
		rows = append(rows, domain.LeaderboardRow{
			Name:    u.DisplayName,
			Correct: u.TotalCorrect,
			Wrong:   u.TotalWrong,
			XP:      u.XP,
			Level:   u.Level,
		})
	}
	return rank(rows), nil
}

// rank orders rows by correct desc, xp desc, then display name asc so
// ties stay reproducible, and truncates to the top ten.
func rank(rows []domain.LeaderboardRow) []domain.LeaderboardRow {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Correct != rows[j].Correct {
			return rows[i].Correct > rows[j].Correct
		}
		if rows[i].XP != rows[j].XP {
			return rows[i].XP > rows[j].XP
		}
		return rows[i].Name < rows[j].Name
	})
	if len(rows) > leaderboardSize {
		rows = rows[:leaderboardSize]
	}
	return rows
}
