// Package reviews buckets customer reviews by rating and extracts their top keywords.
package reviews

import "errors"

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

var ErrBadThresholds = errors.New("negativeThreshold must be lower than positiveThreshold")

type Comment struct {
	Text     string   `json:"text"`
	Rating   *float64 `json:"rating"`
	MenuIdx  *int     `json:"menuIdx"`
	Language string   `json:"language"`
}

type Options struct {
	PositiveThreshold float64
	NegativeThreshold float64
	TopK              int
}

func DefaultOptions() Options {
	return Options{PositiveThreshold: 4, NegativeThreshold: 2, TopK: 5}
}

func (o Options) Validate() error {
	if o.NegativeThreshold >= o.PositiveThreshold {
		return ErrBadThresholds
	}
	if o.TopK <= 0 {
		return errors.New("topK must be positive")
	}
	return nil
}

// Bucket classifies one rating; a review without a rating is neutral.
func Bucket(rating *float64, o Options) string {
	switch {
	case rating == nil:
		return Neutral
	case *rating >= o.PositiveThreshold:
		return Positive
	case *rating <= o.NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

type buckets struct {
	positive, negative []string
	neutral            int
}

func split(comments []Comment, o Options) buckets {
	var b buckets
	for _, c := range comments {
		switch Bucket(c.Rating, o) {
		case Positive:
			b.positive = append(b.positive, c.Text)
		case Negative:
			b.negative = append(b.negative, c.Text)
		default:
			b.neutral++
		}
	}
	return b
}
