package domain

// Polarity 反应类型，持久化值 upvote=0 downvote=1
type Polarity int

const (
	Upvote   Polarity = 0
	Downvote Polarity = 1
)

func (p Polarity) String() string {
	switch p {
	case Upvote:
		return "upvote"
	case Downvote:
		return "downvote"
	}
	return "invalid"
}

func (p Polarity) Valid() bool {
	switch p {
	case Upvote, Downvote:
		return true
	}
	return false
}

func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "upvote":
		return Upvote, nil
	case "downvote":
		return Downvote, nil
	}
	return 0, Validation("reaction.invalid_type")
}
