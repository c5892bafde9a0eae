package models

import (
	"encoding/json"
	"slices"
	"strings"

	dErrors "civiclink/pkg/domain-errors"
)

// Sri Lanka bounding box; every reported coordinate must fall inside it.
const (
	minLatitude  = 5.9
	maxLatitude  = 9.9
	minLongitude = 79.5
	maxLongitude = 82.0
)

// Coordinates are always latitude first. JSON input may be an object
// {"lat":…,"lng":…} or a two-element array [lat, lng]; values are never
// reordered based on magnitude.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c *Coordinates) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err == nil {
		if len(pair) != 2 {
			return dErrors.New(dErrors.CodeValidation, "coordinates must be [lat, lng]")
		}
		c.Lat, c.Lng = pair[0], pair[1]
		return nil
	}
	var obj struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(b, &obj); err != nil || obj.Lat == nil || obj.Lng == nil {
		return dErrors.New(dErrors.CodeValidation, "coordinates must be [lat, lng] or {\"lat\",\"lng\"}")
	}
	c.Lat, c.Lng = *obj.Lat, *obj.Lng
	return nil
}

// Validate checks the coordinates fall inside the service area.
func (c Coordinates) Validate() error {
	if c.Lat < minLatitude || c.Lat > maxLatitude {
		return dErrors.New(dErrors.CodeInvariantViolation, "latitude out of range for Sri Lanka")
	}
	if c.Lng < minLongitude || c.Lng > maxLongitude {
		return dErrors.New(dErrors.CodeInvariantViolation, "longitude out of range for Sri Lanka")
	}
	return nil
}

type Location struct {
	Address     string      `json:"address"`
	District    string      `json:"district"`
	Coordinates Coordinates `json:"coordinates"`
}

func (l Location) Validate() error {
	if strings.TrimSpace(l.Address) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "location address is required")
	}
	if _, ok := CanonicalDistrict(l.District); !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown district: "+l.District)
	}
	return l.Coordinates.Validate()
}

var districts = []string{
	"Colombo", "Gampaha", "Kalutara", "Kandy", "Matale",
	"Nuwara Eliya", "Galle", "Matara", "Hambantota", "Jaffna",
	"Kilinochchi", "Mannar", "Vavuniya", "Mullaitivu", "Batticaloa",
	"Ampara", "Trincomalee", "Kurunegala", "Puttalam", "Anuradhapura",
	"Polonnaruwa", "Badulla", "Moneragala", "Ratnapura", "Kegalle",
}

// Districts returns the 25 administrative districts.
func Districts() []string {
	return slices.Clone(districts)
}

// CanonicalDistrict matches a district name case-insensitively and returns
// its canonical spelling.
func CanonicalDistrict(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, d := range districts {
		if strings.EqualFold(d, name) {
			return d, true
		}
	}
	return "", false
}
