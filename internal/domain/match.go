package domain

import "time"

// MarketMatch pairs a Fliq question with its best-scoring counterpart on
// the comparison venue. Score is in [0,1], rounded to three decimals.
type MarketMatch struct {
	QuestionID   string
	VenueID      string
	FliqTitle    string
	VenueTitle   string
	Score        float64
	MatchedAt    time.Time
}
