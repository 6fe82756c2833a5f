package resources

import (
	"github.com/getmockd/commercemock/pkg/repository"
)

// Zone groups countries (and states) for shipping rates.
type Zone struct {
	repository.Base
	Key         string     `json:"key,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Locations   []Location `json:"locations"`
}

// DocumentKey implements storage.Document.
func (z *Zone) DocumentKey() string { return z.Key }

// ZoneDraft is the body of a zone create request.
type ZoneDraft struct {
	Key         string     `json:"key,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Locations   []Location `json:"locations,omitempty"`
}

// Validate implements repository.Validator.
func (d *ZoneDraft) Validate() error {
	if d.Name == "" {
		return required("name")
	}
	for _, l := range d.Locations {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type zoneKind struct {
	schema
}

func (zoneKind) TypeID() repository.TypeID { return repository.TypeZone }

func (zoneKind) Create(_ repository.CreateContext, d ZoneDraft, base repository.Base) (*Zone, error) {
	locations := d.Locations
	if locations == nil {
		locations = []Location{}
	}
	return &Zone{
		Base:        base,
		Key:         d.Key,
		Name:        d.Name,
		Description: d.Description,
		Locations:   locations,
	}, nil
}

type (
	zoneSetKey struct {
		Key string `json:"key"`
	}
	zoneChangeName struct {
		Name string `json:"name"`
	}
	zoneSetDescription struct {
		Description string `json:"description"`
	}
	zoneLocation struct {
		Location Location `json:"location"`
	}
)

func (a *zoneChangeName) Validate() error {
	if a.Name == "" {
		return required("name")
	}
	return nil
}

func (a *zoneLocation) Validate() error {
	if a.Location.Country == "" {
		return required("location.country")
	}
	return a.Location.Validate()
}

func (zoneKind) Actions() repository.ActionTable[*Zone] {
	return repository.ActionTable[*Zone]{
		"setKey": repository.Handle(func(_ repository.ActionContext, z *Zone, a zoneSetKey) error {
			z.Key = a.Key
			return nil
		}),
		"changeName": repository.Handle(func(_ repository.ActionContext, z *Zone, a zoneChangeName) error {
			z.Name = a.Name
			return nil
		}),
		"setDescription": repository.Handle(func(_ repository.ActionContext, z *Zone, a zoneSetDescription) error {
			z.Description = a.Description
			return nil
		}),
		// Adding a location the zone already has is a no-op.
		"addLocation": repository.Handle(func(_ repository.ActionContext, z *Zone, a zoneLocation) error {
			for _, l := range z.Locations {
				if l == a.Location {
					return nil
				}
			}
			z.Locations = append(z.Locations, a.Location)
			return nil
		}),
		"removeLocation": repository.Handle(func(_ repository.ActionContext, z *Zone, a zoneLocation) error {
			kept := z.Locations[:0]
			for _, l := range z.Locations {
				if l != a.Location {
					kept = append(kept, l)
				}
			}
			z.Locations = kept
			return nil
		}),
	}
}
