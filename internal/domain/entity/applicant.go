package entity

// ApplicantProfile is a validated, normalized applicant record. It is built once per
// run by applicant.NewProfile and never mutated afterwards.
type ApplicantProfile struct {
	FullName   string          `json:"full_name" validate:"required,min=1,max=100"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email" validate:"required,email"`
	Country    string          `json:"country" validate:"required"`
	Experience ExperienceRange `json:"years_of_experience"`
	Interests  []string        `json:"interests"`
	Comments   *string         `json:"comments"`
	Extra      map[string]any  `json:"-"`
}

// FormData flattens the profile into the mapping form agents resolve question labels
// against. Known fields come first in declaration order, extras follow lexically.
func (p *ApplicantProfile) FormData() FormData {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	var comments any
	if p.Comments != nil {
		comments = *p.Comments
	}

	data := FormData{
		{Key: "full_name", Value: p.FullName},
		{Key: "first_name", Value: p.FirstName},
		{Key: "last_name", Value: p.LastName},
		{Key: "email", Value: p.Email},
		{Key: "country", Value: p.Country},
		{Key: "years_of_experience", Value: p.Experience},
		{Key: "interests", Value: interests},
		{Key: "comments", Value: comments},
	}
	for _, f := range FormDataFromMap(p.Extra) {
		if _, taken := data.Get(f.Key); taken {
			continue
		}
		data = append(data, f)
	}
	return data
}

func (p *ApplicantProfile) String() string {
	return p.FullName + " <" + p.Email + ">"
}
