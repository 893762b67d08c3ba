package progress

import "fmt"

// XPForNextLevel returns the XP threshold for advancing past the given
// level. XP is cumulative and never deducted, so each completion can
// advance at most one level.
func XPForNextLevel(level int) int {
	return level * 100
}

var levelTitles = map[int]string{
	1: "Beginner",
	2: "Novice",
	3: "Task Master",
	4: "Productivity Pro",
	5: "Efficiency Expert",
	6: "Goal Crusher",
	7: "Achievement Hunter",
	8: "Legendary Organizer",
	9: "Productivity Guru",
}

// LevelTitle returns the display title for a level. Levels 10 and up
// carry a numbered overlord suffix.
func LevelTitle(level int) string {
	if level >= 10 {
		return fmt.Sprintf("Task Overlord Level %d", level-9)
	}
	if title, ok := levelTitles[level]; ok {
		return title
	}
	return fmt.Sprintf("Level %d Master", level)
}
