package models

// Devotional is the generated daily devotional
type Devotional struct {
	Title      string `json:"title"`
	Verse      string `json:"verse"`
	Importance string `json:"importance"`
	Content    string `json:"content"`
	Prayer     string `json:"prayer"`
}

// VerseExplanation is the structured explanation of a Bible verse
type VerseExplanation struct {
	Explanation string `json:"explanation"`
	Context     string `json:"context"`
	Application string `json:"application"`
	Related     string `json:"related"`
}
