package domain

import "time"

// ChallengeStatus is the lifecycle stage of a challenge.
type ChallengeStatus string

const (
	StatusPending   ChallengeStatus = "pending"
	StatusAccepted  ChallengeStatus = "accepted"
	StatusCompleted ChallengeStatus = "completed"
)

func (s ChallengeStatus) rank() int {
	switch s {
	case StatusAccepted:
		return 1
	case StatusCompleted:
		return 2
	}
	return 0
}

// Participant is a snapshot of a user's counters inside a challenge.
type Participant struct {
	UserID           string     `json:"userId"`
	Username         string     `json:"username"`
	Score            int        `json:"score"`
	CorrectAnswers   int        `json:"correctAnswers"`
	IncorrectAnswers int        `json:"incorrectAnswers"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// SnapshotParticipant copies the user's current counters.
func SnapshotParticipant(u User, completedAt *time.Time) Participant {
	return Participant{
		UserID:           u.ID,
		Username:         u.Username,
		Score:            u.Score,
		CorrectAnswers:   u.CorrectAnswers,
		IncorrectAnswers: u.IncorrectAnswers,
		CompletedAt:      completedAt,
	}
}

// Challenge is a shareable head-to-head session identified by Code.
type Challenge struct {
	ID              string          `json:"id"`
	Code            string          `json:"challengeCode"`
	InviterID       string          `json:"inviterId"`
	InviterUsername string          `json:"inviterUsername"`
	InviterScore    int             `json:"inviterScore"`
	Status          ChallengeStatus `json:"status"`
	Participants    []Participant   `json:"participants"`
	CreatedAt       time.Time       `json:"createdAt"`
	ExpiresAt       time.Time       `json:"expiresAt"`
}

// ParticipantIndex returns the position of userID in the participant list, or -1.
func (c *Challenge) ParticipantIndex(userID string) int {
	for i, p := range c.Participants {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// Expired reports whether the challenge has outlived its retention window.
func (c *Challenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// DeriveStatus computes the status implied by the participant list alone.
func DeriveStatus(participants []Participant) ChallengeStatus {
	if len(participants) == 0 {
		return StatusPending
	}
	allCompleted := true
	for _, p := range participants {
		if p.CompletedAt == nil {
			allCompleted = false
			break
		}
	}
	switch {
	case allCompleted:
		return StatusCompleted
	case len(participants) >= 2:
		return StatusAccepted
	default:
		return StatusPending
	}
}

// NextStatus never moves a challenge backwards: it returns whichever of current
// and the derived status is further along.
func NextStatus(current ChallengeStatus, participants []Participant) ChallengeStatus {
	derived := DeriveStatus(participants)
	if current.rank() > derived.rank() {
		return current
	}
	return derived
}
