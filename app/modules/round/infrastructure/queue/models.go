package roundqueue

import rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"

const (
	// QueueName is the dedicated river queue for round jobs.
	QueueName = "round"

	recalculateRoundKind = "round_outcome_recalculate"
)

// RecalculateRoundJob asks a worker to recompute and persist a round's outcomes.
type RecalculateRoundJob struct {
	GameID   string                     `json:"game_id"`
	RoundID  string                     `json:"round_id"`
	Strategy rounddomain.WinnerStrategy `json:"strategy"`
}

// Kind returns the job type identifier for River
func (RecalculateRoundJob) Kind() string { return recalculateRoundKind }
