package domain

import (
	"slices"
)

const (
	placeTitleRules       = "required,max=100"
	placeDescriptionRules = "max=500"
	placePriceRules       = "gte=1,lte=1000000"
	latitudeRules         = "gte=-90,lte=90"
	longitudeRules        = "gte=-180,lte=180"

	listingTitleRules       = "required,max=50"
	listingDescriptionRules = "required,max=500"
)

type Place struct {
	Metadata
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	OwnerID     string   `json:"owner_id"`
	AmenityIDs  []string `json:"amenity_ids"`
}

type PlaceInput struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description *string  `json:"description" validate:"omitnil,max=500"`
	Price       float64  `json:"price" validate:"gte=1,lte=1000000"`
	Latitude    *float64 `json:"latitude" validate:"omitnil,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitnil,gte=-180,lte=180"`
	OwnerID     string   `json:"owner_id"`
	AmenityIDs  []string `json:"amenities"`
}

type PlacePatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// PlaceDetails is a place together with its resolved relations.
type PlaceDetails struct {
	*Place
	Owner     *User      `json:"owner"`
	Amenities []*Amenity `json:"amenities"`
	Reviews   []*Review  `json:"reviews"`
}

// NewPlace validates in and builds a place owned by in.OwnerID. Amenity ids
// are deduplicated but not resolved here.
func NewPlace(in PlaceInput) (*Place, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := validateField("owner_id", in.OwnerID, "required"); err != nil {
		return nil, err
	}
	p := &Place{
		Metadata:   NewMetadata(),
		Title:      in.Title,
		Price:      in.Price,
		Latitude:   cloneFloat(in.Latitude),
		Longitude:  cloneFloat(in.Longitude),
		OwnerID:    in.OwnerID,
		AmenityIDs: []string{},
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	for _, id := range in.AmenityIDs {
		p.AddAmenity(id)
	}
	return p, nil
}

// CheckListing applies the stricter rules for places listed through the
// facade: a title of at most 50 characters and, when a description is
// given, a non-empty one. Nil arguments are skipped.
func CheckListing(title, description *string) error {
	if title != nil {
		if err := validateField("title", *title, listingTitleRules); err != nil {
			return err
		}
	}
	if description != nil {
		if err := validateField("description", *description, listingDescriptionRules); err != nil {
			return err
		}
	}
	return nil
}

func (p PlacePatch) Validate() error {
	if p.Title != nil {
		if err := validateField("title", *p.Title, placeTitleRules); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateField("description", *p.Description, placeDescriptionRules); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := validateField("price", *p.Price, placePriceRules); err != nil {
			return err
		}
	}
	if p.Latitude != nil {
		if err := validateField("latitude", *p.Latitude, latitudeRules); err != nil {
			return err
		}
	}
	if p.Longitude != nil {
		if err := validateField("longitude", *p.Longitude, longitudeRules); err != nil {
			return err
		}
	}
	return nil
}

// Apply validates patch and copies its set fields onto p. On error p is
// unchanged.
func (p *Place) Apply(patch PlacePatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Latitude != nil {
		p.Latitude = cloneFloat(patch.Latitude)
	}
	if patch.Longitude != nil {
		p.Longitude = cloneFloat(patch.Longitude)
	}
	return nil
}

// AddAmenity links an amenity id. Adding an already linked id is a no-op.
func (p *Place) AddAmenity(id string) bool {
	if p.HasAmenity(id) {
		return false
	}
	p.AmenityIDs = append(p.AmenityIDs, id)
	return true
}

func (p *Place) RemoveAmenity(id string) bool {
	i := slices.Index(p.AmenityIDs, id)
	if i < 0 {
		return false
	}
	p.AmenityIDs = slices.Delete(p.AmenityIDs, i, i+1)
	return true
}

func (p *Place) HasAmenity(id string) bool {
	return slices.Contains(p.AmenityIDs, id)
}

func (p *Place) Meta() *Metadata { return &p.Metadata }

func (p *Place) Attribute(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "title":
		return p.Title, true
	case "description":
		return p.Description, true
	case "price":
		return p.Price, true
	case "owner_id":
		return p.OwnerID, true
	default:
		return nil, false
	}
}

func (p *Place) Clone() *Place {
	cp := *p
	cp.Latitude = cloneFloat(p.Latitude)
	cp.Longitude = cloneFloat(p.Longitude)
	cp.AmenityIDs = slices.Clone(p.AmenityIDs)
	return &cp
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
