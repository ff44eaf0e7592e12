package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/vbonduro/hbnb/internal/apperror"
)

const reviewTextRules = "required"

type Review struct {
	Metadata
	Text    string `json:"text"`
	Rating  int    `json:"rating"`
	UserID  string `json:"user_id"`
	PlaceID string `json:"place_id"`
}

// RatingValue is a rating as supplied by a caller, before coercion. It
// decodes from a JSON number or a JSON string.
type RatingValue string

func RatingOf(n int) RatingValue {
	return RatingValue(strconv.Itoa(n))
}

func (r *RatingValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*r = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RatingValue(s)
	default:
		// Keep the raw token; Int decides whether it is usable.
		*r = RatingValue(b)
	}
	return nil
}

// Int coerces the rating to an integer in 1..5. Integral numbers and numeric
// strings such as "4" or "4.0" are accepted.
func (r RatingValue) Int() (int, error) {
	s := strings.TrimSpace(string(r))
	if s == "" {
		return 0, apperror.NewValidation("rating", "is required")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return checkRating(float64(n))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, apperror.NewValidation("rating", "must be an integer")
	}
	return checkRating(f)
}

func checkRating(f float64) (int, error) {
	if f < 1 || f > 5 {
		return 0, apperror.NewValidation("rating", "must be between 1 and 5")
	}
	return int(f), nil
}

type ReviewInput struct {
	Text    string      `json:"text" validate:"required"`
	Rating  RatingValue `json:"rating" validate:"required"`
	UserID  string      `json:"user_id" validate:"required"`
	PlaceID string      `json:"place_id" validate:"required"`
}

type ReviewPatch struct {
	Text   *string      `json:"text,omitempty"`
	Rating *RatingValue `json:"rating,omitempty"`
}

// NewReview validates in and builds a review. Presence of every field is
// checked before the rating is coerced.
func NewReview(in ReviewInput) (*Review, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	rating, err := in.Rating.Int()
	if err != nil {
		return nil, err
	}
	return &Review{
		Metadata: NewMetadata(),
		Text:     in.Text,
		Rating:   rating,
		UserID:   in.UserID,
		PlaceID:  in.PlaceID,
	}, nil
}

// Apply validates patch and copies its set fields onto r. On error r is
// unchanged.
func (r *Review) Apply(patch ReviewPatch) error {
	if patch.Text != nil {
		if err := validateField("text", *patch.Text, reviewTextRules); err != nil {
			return err
		}
	}
	var rating int
	if patch.Rating != nil {
		n, err := patch.Rating.Int()
		if err != nil {
			return err
		}
		rating = n
	}
	if patch.Text != nil {
		r.Text = *patch.Text
	}
	if patch.Rating != nil {
		r.Rating = rating
	}
	return nil
}

func (r *Review) Meta() *Metadata { return &r.Metadata }

func (r *Review) Attribute(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "text":
		return r.Text, true
	case "rating":
		return r.Rating, true
	case "user_id":
		return r.UserID, true
	case "place_id":
		return r.PlaceID, true
	default:
		return nil, false
	}
}

func (r *Review) Clone() *Review {
	cp := *r
	return &cp
}
