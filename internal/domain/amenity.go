package domain

const amenityNameRules = "required,max=100"

type Amenity struct {
	Metadata
	Name string `json:"name"`
}

type AmenityInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AmenityPatch struct {
	Name *string `json:"name,omitempty"`
}

func NewAmenity(in AmenityInput) (*Amenity, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return &Amenity{Metadata: NewMetadata(), Name: in.Name}, nil
}

func (a *Amenity) Apply(patch AmenityPatch) error {
	if patch.Name == nil {
		return nil
	}
	if err := validateField("name", *patch.Name, amenityNameRules); err != nil {
		return err
	}
	a.Name = *patch.Name
	return nil
}

func (a *Amenity) Meta() *Metadata { return &a.Metadata }

func (a *Amenity) Attribute(name string) (any, bool) {
	switch name {
	case "id":
		return a.ID, true
	case "name":
		return a.Name, true
	default:
		return nil, false
	}
}

func (a *Amenity) Clone() *Amenity {
	cp := *a
	return &cp
}
