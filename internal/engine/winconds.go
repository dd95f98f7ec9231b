package engine

type WinState struct {
	GameOver bool
	Winner   Winner
	Reason   WinReason
}

// EvaluateWinConditions is a pure function of the quest history and the
// rejection counter. The vote track check comes first and overrides the
// quest history entirely.
func EvaluateWinConditions(history []QuestRecord, voteTrack int) WinState {
	if voteTrack >= MaxVoteTrack {
		return WinState{GameOver: true, Winner: WinnerEvil, Reason: ReasonFiveRejections}
	}
	successes, failures := 0, 0
	for _, record := range history {
		switch record.Outcome {
		case QuestSucceeded:
			successes++
		case QuestFailed:
			failures++
		}
	}
	if successes >= 3 {
		return WinState{GameOver: true, Winner: WinnerGood, Reason: ReasonThreeSuccesses}
	}
	if failures >= 3 {
		return WinState{GameOver: true, Winner: WinnerEvil, Reason: ReasonThreeFailures}
	}
	return WinState{}
}
