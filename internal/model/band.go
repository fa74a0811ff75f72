package model

// Band field limits
const (
	MaxBandNameLength  = 100
	MaxBandGenreLength = 50
)

// Band fields accepted from clients
var (
	BandRequiredFields = []string{"name", "genre", "members"}
	BandAllowedFields  = []string{"name", "genre", "members"}
)

// Band represents a band and the concerts it plays, in insertion order.
// Concerts is maintained by the integrity engine only.
type Band struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Genre    string `json:"genre"`
	Members  any    `json:"members"`
	Concerts []Ref  `json:"concerts"`
	Self     string `json:"self,omitempty"`
}

// BandInput is the body of a band create or edit
type BandInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Genre   *string `json:"genre" validate:"omitempty,min=1,max=50"`
	Members any     `json:"members"`
}

// Validate checks field values. Presence is checked separately by ValidateShape.
func (r *BandInput) Validate() []FieldError {
	errs := validateStruct(r)
	if r.Members != nil {
		if fe := validateMembers(r.Members); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// Apply copies the set fields onto b
func (r *BandInput) Apply(b *Band) {
	if r.Name != nil {
		b.Name = *r.Name
	}
	if r.Genre != nil {
		b.Genre = *r.Genre
	}
	if r.Members != nil {
		b.Members = r.Members
	}
}

// validateMembers accepts a positive whole number or a non-empty list of
// non-empty names.
func validateMembers(v any) *FieldError {
	switch m := v.(type) {
	case float64:
		if m < 1 || m != float64(int64(m)) {
			return &FieldError{Field: "members", Message: "must be a positive integer"}
		}
		return nil
	case []any:
		if len(m) == 0 {
			return &FieldError{Field: "members", Message: "must not be empty"}
		}
		for _, item := range m {
			s, ok := item.(string)
			if !ok || s == "" {
				return &FieldError{Field: "members", Message: "must list member names as strings"}
			}
		}
		return nil
	default:
		return &FieldError{Field: "members", Message: "must be an integer or a list of names"}
	}
}

// BandPage is a page of bands
type BandPage struct {
	Bands []*Band `json:"bands"`
	Self  string  `json:"self"`
	Next  string  `json:"next,omitempty"`
}
