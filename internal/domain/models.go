package domain

// Score holds a user's recorded outcomes for a single pool.
type Score struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// User represents a registered participant. XP, Level, TotalCorrect and
// TotalWrong are derived from ScoresByPool and recomputed on every score
// change; they are persisted only so read paths stay cheap.
type User struct {
	ID           string           `json:"id"`
	DisplayName  string           `json:"displayName"`
	ScoresByPool map[string]Score `json:"scoresByPool"`
	XP           int              `json:"xp"`
	Level        int              `json:"level"`
	TotalCorrect int              `json:"totalCorrect"`
	TotalWrong   int              `json:"totalWrong"`
}

// Refresh recomputes the derived progress fields from ScoresByPool.
func (u *User) Refresh() {
	u.XP, u.Level, u.TotalCorrect, u.TotalWrong = ComputeProgress(u.ScoresByPool)
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Correct int      `json:"correct"` // index into Options
}

// Pool is a named, ordered collection of questions. Pools are immutable
// once uploaded; all core components treat them as read-only.
type Pool struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// LeaderboardRow is one ranked entry in a pool or global leaderboard.
type LeaderboardRow struct {
	Name    string `json:"name"`
	Correct int    `json:"correct"`
	Wrong   int    `json:"wrong"`
	XP      int    `json:"xp"`
	Level   int    `json:"level"`
}

// ChatDelivery summarizes one chat's share of a broadcast.
type ChatDelivery struct {
	ChatID string `json:"chatId"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
}

// DeliveryReport enumerates per-chat outcomes of a pool broadcast.
// Failed sends are recorded, never retried.
type DeliveryReport struct {
	JobID     string         `json:"jobId"`
	Pool      string         `json:"pool"`
	Chats     []ChatDelivery `json:"chats"`
	Sent      int            `json:"sent"`
	Failed    int            `json:"failed"`
	Attempted int            `json:"attempted"`
}
