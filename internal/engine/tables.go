package engine

import "fmt"

const (
	MinPlayers = 5
	MaxPlayers = 10

	// QuestCount is fixed: a game runs at most five quests.
	QuestCount = 5

	// MaxVoteTrack ends the game for evil when reached.
	MaxVoteTrack = 5
)

type alignmentSplit struct {
	Good int
	Evil int
}

var alignmentTable = map[int]alignmentSplit{
	5:  {Good: 3, Evil: 2},
	6:  {Good: 4, Evil: 2},
	7:  {Good: 4, Evil: 3},
	8:  {Good: 5, Evil: 3},
	9:  {Good: 6, Evil: 3},
	10: {Good: 6, Evil: 4},
}

var questSizeTable = map[int][QuestCount]int{
	5:  {2, 3, 2, 3, 3},
	6:  {2, 3, 4, 3, 4},
	7:  {2, 3, 3, 4, 4},
	8:  {3, 4, 4, 5, 5},
	9:  {3, 4, 4, 5, 5},
	10: {3, 4, 4, 5, 5},
}

// AlignmentCounts returns the fixed good/evil split for a seating size.
func AlignmentCounts(playerCount int) (good int, evil int, err error) {
	split, ok := alignmentTable[playerCount]
	if !ok {
		return 0, 0, fmt.Errorf("player count %d outside %d-%d", playerCount, MinPlayers, MaxPlayers)
	}
	return split.Good, split.Evil, nil
}

// QuestTeamSize returns the required team size for (seating size, quest number).
func QuestTeamSize(playerCount, questNumber int) (int, error) {
	sizes, ok := questSizeTable[playerCount]
	if !ok {
		return 0, fmt.Errorf("player count %d outside %d-%d", playerCount, MinPlayers, MaxPlayers)
	}
	if questNumber < 1 || questNumber > QuestCount {
		return 0, fmt.Errorf("quest number %d outside 1-%d", questNumber, QuestCount)
	}
	return sizes[questNumber-1], nil
}

// QuestFailThreshold returns how many fail actions sink a quest. Quest 4
// needs two fails in games of seven or more players, everything else one.
func QuestFailThreshold(playerCount, questNumber int) int {
	if playerCount >= 7 && questNumber == 4 {
		return 2
	}
	return 1
}
