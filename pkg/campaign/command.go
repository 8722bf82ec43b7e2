package campaign

import "github.com/jwebster45206/campaign-engine/pkg/levels"

// CommandType tags a campaign mutation request. The set is closed: any value
// outside it is rejected by Dispatch and logged, leaving state unchanged.
type CommandType string

const (
	CmdNewGame          CommandType = "NEW_GAME"
	CmdContinue         CommandType = "CONTINUE"
	CmdSelectLevel      CommandType = "SELECT_LEVEL"
	CmdBeginMission     CommandType = "BEGIN_MISSION"
	CmdIntroComplete    CommandType = "INTRO_COMPLETE"
	CmdBriefingComplete CommandType = "BRIEFING_COMPLETE"
	CmdLoadingComplete  CommandType = "LOADING_COMPLETE"
	CmdTutorialComplete CommandType = "TUTORIAL_COMPLETE"
	CmdDropComplete     CommandType = "DROP_COMPLETE"
	CmdLevelComplete    CommandType = "LEVEL_COMPLETE"
	CmdAdvance          CommandType = "ADVANCE"
	CmdRetry            CommandType = "RETRY"
	CmdPause            CommandType = "PAUSE"
	CmdResume           CommandType = "RESUME"
	CmdPlayerDied       CommandType = "PLAYER_DIED"
	CmdMainMenu         CommandType = "MAIN_MENU"
	CmdEnterBonusLevel  CommandType = "ENTER_BONUS_LEVEL"
	CmdBonusComplete    CommandType = "BONUS_COMPLETE"
	CmdDevJump          CommandType = "DEV_JUMP"
)

// Command is a tagged campaign mutation request. Only the fields relevant to
// the command type are read; the rest are ignored.
type Command struct {
	Type       CommandType `json:"type"`
	Level      levels.ID   `json:"level,omitempty"`      // SELECT_LEVEL, ENTER_BONUS_LEVEL, DEV_JUMP
	Difficulty Difficulty  `json:"difficulty,omitempty"` // NEW_GAME
	Stats      *LevelStats `json:"stats,omitempty"`      // LEVEL_COMPLETE
}

// Difficulty is the campaign-wide difficulty setting, chosen at NEW_GAME.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	}
	return false
}

// LevelStats is the end-of-level stats payload reported by the world runtime
// with LEVEL_COMPLETE.
type LevelStats struct {
	Elapsed        float64 `json:"elapsed"` // seconds; 0 means "let the director compute it"
	Kills          int     `json:"kills"`
	ShotsFired     int     `json:"shots_fired"`
	ShotsHit       int     `json:"shots_hit"`
	Accuracy       float64 `json:"accuracy"` // computed by the director, 0..1
	SecretsFound   int     `json:"secrets_found"`
	SecretsTotal   int     `json:"secrets_total"`
	AudioLogsFound int     `json:"audio_logs_found"`
	AudioLogsTotal int     `json:"audio_logs_total"`
	DamageReceived int     `json:"damage_received"`
}
