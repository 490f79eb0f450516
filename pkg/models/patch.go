package models

// JobPatch is a partial Job update. Nil fields are left untouched.
type JobPatch struct {
	Title          *string   `json:"title,omitempty"`
	TitleEn        *string   `json:"titleEn,omitempty"`
	Company        *string   `json:"company,omitempty"`
	Location       *string   `json:"location,omitempty"`
	City           *string   `json:"city,omitempty"`
	Type           *JobType  `json:"type,omitempty"`
	Sector         *Sector   `json:"sector,omitempty"`
	Salary         *string   `json:"salary,omitempty"`
	PostedAt       *string   `json:"postedAt,omitempty"`
	Description    *string   `json:"description,omitempty"`
	DescriptionEn  *string   `json:"descriptionEn,omitempty"`
	Requirements   *[]string `json:"requirements,omitempty"`
	RequirementsEn *[]string `json:"requirementsEn,omitempty"`
	Views          *int      `json:"views,omitempty"`
	Source         *string   `json:"source,omitempty"`
	SourceURL      *string   `json:"sourceUrl,omitempty"`
	IsUrgent       *bool     `json:"isUrgent,omitempty"`
}

// Apply returns j with every non-nil field of p copied over it.
func (p JobPatch) Apply(j Job) Job {
	set(&j.Title, p.Title)
	set(&j.TitleEn, p.TitleEn)
	set(&j.Company, p.Company)
	set(&j.Location, p.Location)
	set(&j.City, p.City)
	set(&j.Type, p.Type)
	set(&j.Sector, p.Sector)
	set(&j.Salary, p.Salary)
	set(&j.PostedAt, p.PostedAt)
	set(&j.Description, p.Description)
	set(&j.DescriptionEn, p.DescriptionEn)
	if p.Requirements != nil {
		j.Requirements = append([]string(nil), (*p.Requirements)...)
	}
	if p.RequirementsEn != nil {
		j.RequirementsEn = append([]string(nil), (*p.RequirementsEn)...)
	}
	set(&j.Views, p.Views)
	set(&j.Source, p.Source)
	set(&j.SourceURL, p.SourceURL)
	set(&j.IsUrgent, p.IsUrgent)
	return j
}

// Fields returns the patch as document field names for a partial remote write.
func (p JobPatch) Fields() map[string]any {
	f := map[string]any{}
	put(f, "title", p.Title)
	put(f, "titleEn", p.TitleEn)
	put(f, "company", p.Company)
	put(f, "location", p.Location)
	put(f, "city", p.City)
	put(f, "type", p.Type)
	put(f, "sector", p.Sector)
	put(f, "salary", p.Salary)
	put(f, "postedAt", p.PostedAt)
	put(f, "description", p.Description)
	put(f, "descriptionEn", p.DescriptionEn)
	put(f, "requirements", p.Requirements)
	put(f, "requirementsEn", p.RequirementsEn)
	put(f, "views", p.Views)
	put(f, "source", p.Source)
	put(f, "sourceUrl", p.SourceURL)
	put(f, "isUrgent", p.IsUrgent)
	return f
}

// UserPatch is a partial User update. Applying the same patch twice yields the
// same record as applying it once.
type UserPatch struct {
	Name               *string       `json:"name,omitempty"`
	Email              *string       `json:"email,omitempty"`
	Role               *UserRole     `json:"role,omitempty"`
	Status             *UserStatus   `json:"status,omitempty"`
	Governorate        *string       `json:"governorate,omitempty"`
	CanProvideServices *bool         `json:"canProvideServices,omitempty"`
	CanWriteArticles   *bool         `json:"canWriteArticles,omitempty"`
	InterestedSector   *Sector       `json:"interestedSector,omitempty"`
	CompanyName        *string       `json:"companyName,omitempty"`
	Bio                *string       `json:"bio,omitempty"`
	Phone              *string       `json:"phone,omitempty"`
	Skills             *[]string     `json:"skills,omitempty"`
	Experience         *[]Experience `json:"experience,omitempty"`
	Education          *[]Education  `json:"education,omitempty"`
	Website            *string       `json:"website,omitempty"`
	ProfileImage       *string       `json:"profileImage,omitempty"`
	CVURL              *string       `json:"cvUrl,omitempty"`
	CVName             *string       `json:"cvName,omitempty"`
}

func (p UserPatch) Apply(u User) User {
	set(&u.Name, p.Name)
	set(&u.Email, p.Email)
	set(&u.Role, p.Role)
	set(&u.Status, p.Status)
	set(&u.Governorate, p.Governorate)
	set(&u.CanProvideServices, p.CanProvideServices)
	set(&u.CanWriteArticles, p.CanWriteArticles)
	set(&u.InterestedSector, p.InterestedSector)
	set(&u.CompanyName, p.CompanyName)
	set(&u.Bio, p.Bio)
	set(&u.Phone, p.Phone)
	if p.Skills != nil {
		u.Skills = append([]string(nil), (*p.Skills)...)
	}
	if p.Experience != nil {
		u.Experience = append([]Experience(nil), (*p.Experience)...)
	}
	if p.Education != nil {
		u.Education = append([]Education(nil), (*p.Education)...)
	}
	set(&u.Website, p.Website)
	set(&u.ProfileImage, p.ProfileImage)
	set(&u.CVURL, p.CVURL)
	set(&u.CVName, p.CVName)
	return u
}

func (p UserPatch) Fields() map[string]any {
	f := map[string]any{}
	put(f, "name", p.Name)
	put(f, "email", p.Email)
	put(f, "role", p.Role)
	put(f, "status", p.Status)
	put(f, "governorate", p.Governorate)
	put(f, "canProvideServices", p.CanProvideServices)
	put(f, "canWriteArticles", p.CanWriteArticles)
	put(f, "interestedSector", p.InterestedSector)
	put(f, "companyName", p.CompanyName)
	put(f, "bio", p.Bio)
	put(f, "phone", p.Phone)
	put(f, "skills", p.Skills)
	put(f, "experience", p.Experience)
	put(f, "education", p.Education)
	put(f, "website", p.Website)
	put(f, "profileImage", p.ProfileImage)
	put(f, "cvUrl", p.CVURL)
	put(f, "cvName", p.CVName)
	return f
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func put[T any](f map[string]any, key string, v *T) {
	if v != nil {
		f[key] = *v
	}
}
