package model

// Concert fields accepted from clients
var (
	ConcertRequiredFields = []string{"venue", "address", "date", "band"}
	ConcertAllowedFields  = []string{"venue", "address", "date", "band"}
)

// Concert represents a single show played by exactly one band
type Concert struct {
	ID      ID     `json:"id"`
	Venue   string `json:"venue"`
	Address string `json:"address"`
	Date    string `json:"date"`
	Band    Ref    `json:"band"`
	Self    string `json:"self,omitempty"`
}

// ConcertInput is the body of a concert create or edit
type ConcertInput struct {
	Venue   *string `json:"venue" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address" validate:"omitempty,min=1,max=300"`
	Date    *string `json:"date"`
	Band    *ID     `json:"band" validate:"omitempty,gt=0"`
}

// Validate checks field values, including the calendar date
func (r *ConcertInput) Validate() []FieldError {
	errs := validateStruct(r)
	if r.Date != nil {
		if err := ValidateDate(*r.Date); err != nil {
			errs = append(errs, FieldError{Field: "date", Message: err.Error()})
		}
	}
	return errs
}

// Apply copies the set fields other than band onto c
func (r *ConcertInput) Apply(c *Concert) {
	if r.Venue != nil {
		c.Venue = *r.Venue
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.Date != nil {
		c.Date = *r.Date
	}
}

// ConcertPage is a page of concerts with the total collection size
type ConcertPage struct {
	Concerts         []*Concert `json:"concerts"`
	CollectionLength int        `json:"collection_length"`
	Self             string     `json:"self"`
	Next             string     `json:"next,omitempty"`
}
