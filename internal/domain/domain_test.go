package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/hbnb/internal/apperror"
)

type stubHasher struct {
	err error
}

func (h stubHasher) Hash(plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

func (h stubHasher) Verify(plaintext, hash string) bool {
	return hash == "hashed:"+plaintext
}

func ptr[T any](v T) *T { return &v }

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	ae := apperror.From(err)
	assert.Equal(t, apperror.KindValidation, ae.Kind, err.Error())
	assert.Equal(t, field, ae.Field)
}

func validUserInput() UserInput {
	return UserInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret"}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(validUserInput(), stubHasher{})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "hashed:secret", u.PasswordHash)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	assert.True(t, u.VerifyPassword("secret", stubHasher{}))
	assert.False(t, u.VerifyPassword("wrong", stubHasher{}))
}

func TestNewUserValidation(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*UserInput)
		field string
	}{
		{"missing first name", func(in *UserInput) { in.FirstName = "" }, "first_name"},
		{"long last name", func(in *UserInput) { in.LastName = strings.Repeat("x", 51) }, "last_name"},
		{"bad email", func(in *UserInput) { in.Email = "not-an-email" }, "email"},
		{"missing password", func(in *UserInput) { in.Password = "" }, "password"},
		{"password over 72 bytes", func(in *UserInput) { in.Password = strings.Repeat("x", 73) }, "password"},
		{"multi-byte password over 72 bytes", func(in *UserInput) { in.Password = strings.Repeat("é", 37) }, "password"},
		{"first violation wins", func(in *UserInput) { in.FirstName = ""; in.Email = "" }, "first_name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validUserInput()
			tc.edit(&in)
			u, err := NewUser(in, stubHasher{})
			requireValidation(t, err, tc.field)
			assert.Nil(t, u)
		})
	}
}

func TestNewUserNameLengthCountsRunes(t *testing.T) {
	in := validUserInput()
	in.FirstName = strings.Repeat("é", 50)
	_, err := NewUser(in, stubHasher{})
	assert.NoError(t, err)
}

func TestNewUserHashFailure(t *testing.T) {
	_, err := NewUser(validUserInput(), stubHasher{err: errors.New("boom")})
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))
}

func TestUserJSONOmitsPassword(t *testing.T) {
	u, err := NewUser(validUserInput(), stubHasher{})
	require.NoError(t, err)

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "PasswordHash")
	assert.Equal(t, u.ID, got["id"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}Z$`, got["created_at"])
}

func TestUserApply(t *testing.T) {
	u, err := NewUser(validUserInput(), stubHasher{})
	require.NoError(t, err)

	err = u.Apply(UserPatch{FirstName: ptr("Augusta"), Password: ptr("new")}, stubHasher{})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", u.FirstName)
	assert.Equal(t, "hashed:new", u.PasswordHash)
}

func TestUserApplyRejectsLongPassword(t *testing.T) {
	u, err := NewUser(validUserInput(), stubHasher{})
	require.NoError(t, err)

	err = u.Apply(UserPatch{Password: ptr(strings.Repeat("x", MaxPasswordBytes+1))}, stubHasher{})
	requireValidation(t, err, "password")
	assert.Equal(t, "hashed:secret", u.PasswordHash)

	require.NoError(t, u.Apply(UserPatch{Password: ptr(strings.Repeat("x", MaxPasswordBytes))}, stubHasher{}))
}

func TestUserApplyRejectsWithoutChanges(t *testing.T) {
	u, err := NewUser(validUserInput(), stubHasher{})
	require.NoError(t, err)

	err = u.Apply(UserPatch{FirstName: ptr("Augusta"), Email: ptr("bad")}, stubHasher{})
	requireValidation(t, err, "email")
	assert.Equal(t, "Ada", u.FirstName)
}

func TestUserPatchRestricted(t *testing.T) {
	assert.Empty(t, UserPatch{FirstName: ptr("a")}.Restricted())
	assert.Equal(t, []string{"email", "is_admin"}, UserPatch{Email: ptr("a@b.c"), IsAdmin: ptr(true)}.Restricted())
}

func TestUserAttribute(t *testing.T) {
	u, err := NewUser(validUserInput(), stubHasher{})
	require.NoError(t, err)

	v, ok := u.Attribute("email")
	assert.True(t, ok)
	assert.Equal(t, "ada@example.com", v)

	_, ok = u.Attribute("password_hash")
	assert.False(t, ok)
}

func validPlaceInput() PlaceInput {
	return PlaceInput{Title: "Loft", Price: 100, Latitude: ptr(10.0), Longitude: ptr(20.0), OwnerID: "owner-1"}
}

func TestNewPlace(t *testing.T) {
	in := validPlaceInput()
	in.AmenityIDs = []string{"a1", "a2", "a1"}

	p, err := NewPlace(in)
	require.NoError(t, err)
	assert.Equal(t, "Loft", p.Title)
	assert.Equal(t, 100.0, p.Price)
	assert.Equal(t, 10.0, *p.Latitude)
	assert.Equal(t, []string{"a1", "a2"}, p.AmenityIDs)
	assert.Empty(t, p.Description)
}

func TestNewPlaceValidation(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*PlaceInput)
		field string
	}{
		{"missing title", func(in *PlaceInput) { in.Title = "" }, "title"},
		{"long title", func(in *PlaceInput) { in.Title = strings.Repeat("t", 101) }, "title"},
		{"long description", func(in *PlaceInput) { in.Description = ptr(strings.Repeat("d", 501)) }, "description"},
		{"zero price", func(in *PlaceInput) { in.Price = 0 }, "price"},
		{"price too high", func(in *PlaceInput) { in.Price = 1_000_001 }, "price"},
		{"latitude", func(in *PlaceInput) { in.Latitude = ptr(90.5) }, "latitude"},
		{"longitude", func(in *PlaceInput) { in.Longitude = ptr(-181.0) }, "longitude"},
		{"owner", func(in *PlaceInput) { in.OwnerID = "" }, "owner_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validPlaceInput()
			tc.edit(&in)
			_, err := NewPlace(in)
			requireValidation(t, err, tc.field)
		})
	}
}

func TestNewPlaceOptionalCoordinates(t *testing.T) {
	in := validPlaceInput()
	in.Latitude, in.Longitude = nil, nil
	p, err := NewPlace(in)
	require.NoError(t, err)
	assert.Nil(t, p.Latitude)
	assert.Nil(t, p.Longitude)
}

func TestPlaceApplyKeepsPriceOnFailure(t *testing.T) {
	p, err := NewPlace(validPlaceInput())
	require.NoError(t, err)

	err = p.Apply(PlacePatch{Title: ptr("New"), Price: ptr(-5.0)})
	requireValidation(t, err, "price")
	assert.Equal(t, 100.0, p.Price)
	assert.Equal(t, "Loft", p.Title)

	require.NoError(t, p.Apply(PlacePatch{Price: ptr(250.0), Latitude: ptr(-45.0)}))
	assert.Equal(t, 250.0, p.Price)
	assert.Equal(t, -45.0, *p.Latitude)
}

func TestPlaceAmenityLinks(t *testing.T) {
	p, err := NewPlace(validPlaceInput())
	require.NoError(t, err)

	assert.True(t, p.AddAmenity("a1"))
	assert.False(t, p.AddAmenity("a1"))
	assert.True(t, p.HasAmenity("a1"))
	assert.True(t, p.RemoveAmenity("a1"))
	assert.False(t, p.RemoveAmenity("a1"))
	assert.Empty(t, p.AmenityIDs)
}

func TestPlaceCloneIsDeep(t *testing.T) {
	p, err := NewPlace(validPlaceInput())
	require.NoError(t, err)
	p.AddAmenity("a1")

	cp := p.Clone()
	*cp.Latitude = 0
	cp.AmenityIDs[0] = "changed"
	cp.Title = "changed"

	assert.Equal(t, 10.0, *p.Latitude)
	assert.Equal(t, []string{"a1"}, p.AmenityIDs)
	assert.Equal(t, "Loft", p.Title)
}

func TestRatingValueInt(t *testing.T) {
	valid := map[RatingValue]int{"1": 1, "5": 5, " 3 ": 3, "4.0": 4, "2e0": 2}
	for in, want := range valid {
		got, err := in.Int()
		require.NoError(t, err, string(in))
		assert.Equal(t, want, got)
	}

	invalid := map[RatingValue]string{
		"":      "is required",
		"0":     "must be between 1 and 5",
		"6":     "must be between 1 and 5",
		"-1":    "must be between 1 and 5",
		"4.5":   "must be an integer",
		"five":  "must be an integer",
		"true":  "must be an integer",
		"NaN":   "must be an integer",
		"1e300": "must be between 1 and 5",
	}
	for in, msg := range invalid {
		_, err := in.Int()
		requireValidation(t, err, "rating")
		assert.Equal(t, msg, apperror.From(err).Message, string(in))
	}
}

func TestRatingValueUnmarshal(t *testing.T) {
	var in ReviewInput
	require.NoError(t, json.Unmarshal([]byte(`{"text":"ok","rating":4,"user_id":"u","place_id":"p"}`), &in))
	assert.Equal(t, RatingValue("4"), in.Rating)

	require.NoError(t, json.Unmarshal([]byte(`{"rating":"5"}`), &in))
	assert.Equal(t, RatingValue("5"), in.Rating)

	require.NoError(t, json.Unmarshal([]byte(`{"rating":null}`), &in))
	assert.Equal(t, RatingValue(""), in.Rating)
}

func TestNewReview(t *testing.T) {
	r, err := NewReview(ReviewInput{Text: "great", Rating: "4", UserID: "u", PlaceID: "p"})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Rating)
	assert.Equal(t, "great", r.Text)
}

func TestNewReviewPresenceBeforeRange(t *testing.T) {
	_, err := NewReview(ReviewInput{Text: "x", Rating: "9"})
	requireValidation(t, err, "user_id")

	_, err = NewReview(ReviewInput{Rating: "9", UserID: "u", PlaceID: "p"})
	requireValidation(t, err, "text")

	_, err = NewReview(ReviewInput{Text: "x", Rating: "9", UserID: "u", PlaceID: "p"})
	requireValidation(t, err, "rating")
}

func TestReviewApply(t *testing.T) {
	r, err := NewReview(ReviewInput{Text: "great", Rating: RatingOf(4), UserID: "u", PlaceID: "p"})
	require.NoError(t, err)

	err = r.Apply(ReviewPatch{Text: ptr("meh"), Rating: ptr(RatingValue("7"))})
	requireValidation(t, err, "rating")
	assert.Equal(t, "great", r.Text)
	assert.Equal(t, 4, r.Rating)

	require.NoError(t, r.Apply(ReviewPatch{Rating: ptr(RatingOf(2))}))
	assert.Equal(t, 2, r.Rating)
}

func TestAmenity(t *testing.T) {
	_, err := NewAmenity(AmenityInput{Name: ""})
	requireValidation(t, err, "name")

	_, err = NewAmenity(AmenityInput{Name: strings.Repeat("n", 101)})
	requireValidation(t, err, "name")

	a, err := NewAmenity(AmenityInput{Name: "Wi-Fi"})
	require.NoError(t, err)

	err = a.Apply(AmenityPatch{Name: ptr("")})
	requireValidation(t, err, "name")
	require.NoError(t, a.Apply(AmenityPatch{Name: ptr("Pool")}))
	assert.Equal(t, "Pool", a.Name)
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := Timestamp{time.Date(2024, 3, 9, 14, 5, 6, 123456000, time.UTC)}
	assert.Equal(t, "2024-03-09T14:05:06.123456Z", ts.String())

	b, err := json.Marshal(ts)
	require.NoError(t, err)

	var got Timestamp
	require.NoError(t, json.Unmarshal(b, &got))
	assert.True(t, ts.Equal(got.Time))
}

func TestTouch(t *testing.T) {
	m := NewMetadata()
	created := m.CreatedAt
	m.Touch()
	assert.False(t, m.UpdatedAt.Before(created.Time))
	assert.Equal(t, created, m.CreatedAt)
}

func TestCheckListing(t *testing.T) {
	assert.NoError(t, CheckListing(ptr("Loft"), nil))
	assert.NoError(t, CheckListing(nil, ptr("Bright and quiet")))
	requireValidation(t, CheckListing(ptr(strings.Repeat("t", 51)), nil), "title")
	requireValidation(t, CheckListing(ptr("Loft"), ptr("")), "description")
}
