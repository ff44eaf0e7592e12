package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/vbonduro/hbnb/internal/domain"
)

type UserStore = Store[*domain.User]

func NewUserStore(db *sql.DB) *UserStore {
	return newStore(db, codec[*domain.User]{
		table: "users",
		noun:  "user",
		columns: []any{
			"id", "first_name", "last_name", "email", "password_hash", "is_admin", "created_at", "updated_at",
		},
		attrs: map[string]string{
			"id": "id", "first_name": "first_name", "last_name": "last_name", "email": "email", "is_admin": "is_admin",
		},
		record: func(u *domain.User) (goqu.Record, error) {
			return metaRecord(&u.Metadata, goqu.Record{
				"first_name":    u.FirstName,
				"last_name":     u.LastName,
				"email":         u.Email,
				"password_hash": u.PasswordHash,
				"is_admin":      u.IsAdmin,
			}), nil
		},
		scan: func(scan scanFunc) (*domain.User, error) {
			u := &domain.User{}
			var created, updated string
			if err := scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsAdmin, &created, &updated); err != nil {
				return nil, err
			}
			if err := scanMeta(&u.Metadata, created, updated); err != nil {
				return nil, err
			}
			return u, nil
		},
	})
}

type PlaceStore = Store[*domain.Place]

func NewPlaceStore(db *sql.DB) *PlaceStore {
	return newStore(db, codec[*domain.Place]{
		table: "places",
		noun:  "place",
		columns: []any{
			"id", "title", "description", "price", "latitude", "longitude", "owner_id", "amenity_ids", "created_at", "updated_at",
		},
		attrs: map[string]string{
			"id": "id", "title": "title", "description": "description", "price": "price", "owner_id": "owner_id",
		},
		record: func(p *domain.Place) (goqu.Record, error) {
			ids := p.AmenityIDs
			if ids == nil {
				ids = []string{}
			}
			amenities, err := json.Marshal(ids)
			if err != nil {
				return nil, fmt.Errorf("failed to encode amenity ids: %w", err)
			}
			return metaRecord(&p.Metadata, goqu.Record{
				"title":       p.Title,
				"description": p.Description,
				"price":       p.Price,
				"latitude":    nullFloat(p.Latitude),
				"longitude":   nullFloat(p.Longitude),
				"owner_id":    p.OwnerID,
				"amenity_ids": string(amenities),
			}), nil
		},
		scan: func(scan scanFunc) (*domain.Place, error) {
			p := &domain.Place{}
			var lat, lon sql.NullFloat64
			var amenities, created, updated string
			if err := scan(&p.ID, &p.Title, &p.Description, &p.Price, &lat, &lon, &p.OwnerID, &amenities, &created, &updated); err != nil {
				return nil, err
			}
			if lat.Valid {
				p.Latitude = &lat.Float64
			}
			if lon.Valid {
				p.Longitude = &lon.Float64
			}
			if err := json.Unmarshal([]byte(amenities), &p.AmenityIDs); err != nil {
				return nil, fmt.Errorf("failed to decode amenity ids: %w", err)
			}
			if err := scanMeta(&p.Metadata, created, updated); err != nil {
				return nil, err
			}
			return p, nil
		},
	})
}

type ReviewStore = Store[*domain.Review]

func NewReviewStore(db *sql.DB) *ReviewStore {
	return newStore(db, codec[*domain.Review]{
		table:   "reviews",
		noun:    "review",
		columns: []any{"id", "text", "rating", "user_id", "place_id", "created_at", "updated_at"},
		attrs: map[string]string{
			"id": "id", "text": "text", "rating": "rating", "user_id": "user_id", "place_id": "place_id",
		},
		record: func(r *domain.Review) (goqu.Record, error) {
			return metaRecord(&r.Metadata, goqu.Record{
				"text":     r.Text,
				"rating":   r.Rating,
				"user_id":  r.UserID,
				"place_id": r.PlaceID,
			}), nil
		},
		scan: func(scan scanFunc) (*domain.Review, error) {
			r := &domain.Review{}
			var created, updated string
			if err := scan(&r.ID, &r.Text, &r.Rating, &r.UserID, &r.PlaceID, &created, &updated); err != nil {
				return nil, err
			}
			if err := scanMeta(&r.Metadata, created, updated); err != nil {
				return nil, err
			}
			return r, nil
		},
	})
}

type AmenityStore = Store[*domain.Amenity]

func NewAmenityStore(db *sql.DB) *AmenityStore {
	return newStore(db, codec[*domain.Amenity]{
		table:   "amenities",
		noun:    "amenity",
		columns: []any{"id", "name", "created_at", "updated_at"},
		attrs:   map[string]string{"id": "id", "name": "name"},
		record: func(a *domain.Amenity) (goqu.Record, error) {
			return metaRecord(&a.Metadata, goqu.Record{"name": a.Name}), nil
		},
		scan: func(scan scanFunc) (*domain.Amenity, error) {
			a := &domain.Amenity{}
			var created, updated string
			if err := scan(&a.ID, &a.Name, &created, &updated); err != nil {
				return nil, err
			}
			if err := scanMeta(&a.Metadata, created, updated); err != nil {
				return nil, err
			}
			return a, nil
		},
	})
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
