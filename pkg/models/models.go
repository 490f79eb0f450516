package models

// Domain models shared by the store, the session provider and the API. Field names
// follow the document layout used by the remote collections.

type JobType string

const (
	JobTypeFullTime   JobType = "دوام كامل"
	JobTypePartTime   JobType = "دوام جزئي"
	JobTypeRemote     JobType = "عمل عن بعد"
	JobTypeContract   JobType = "عقد"
	JobTypeInternship JobType = "تدريب"
)

type Sector string

const (
	SectorTech        Sector = "تكنولوجيا المعلومات"
	SectorEngineering Sector = "الهندسة والبناء"
	SectorOilGas      Sector = "النفط والغاز"
	SectorHealth      Sector = "الرعاية الصحية"
	SectorEducation   Sector = "التعليم"
	SectorSales       Sector = "المبيعات والتسويق"
	SectorAdmin       Sector = "الإدارة والسكرتارية"
	SectorFinance     Sector = "المحاسبة والمالية"
	SectorService     Sector = "الخدمات والضيافة"
	SectorOther       Sector = "أخرى"
)

type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "قيد المراجعة"
	ItemStatusApproved ItemStatus = "مقبول"
	ItemStatusRejected ItemStatus = "مرفوض"
)

// Valid reports whether s is one of the moderation states.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusApproved, ItemStatusRejected:
		return true
	}
	return false
}

type UserRole string

const (
	RoleSeeker          UserRole = "باحث عن عمل"
	RoleRecruiter       UserRole = "صاحب عمل"
	RoleAdmin           UserRole = "مدير النظام"
	RoleServiceProvider UserRole = "ناشر خدمة"
	RoleContentCreator  UserRole = "كاتب"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleSeeker, RoleRecruiter, RoleAdmin, RoleServiceProvider, RoleContentCreator:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "نشط"
	UserStatusSuspended UserStatus = "موقوف مؤقتاً"
	UserStatusPending   UserStatus = "قيد المراجعة"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusPending:
		return true
	}
	return false
}

// Governorates lists the values accepted by the listing governorate filter.
var Governorates = []string{
	"بغداد", "البصرة", "نينوى", "أربيل", "السليمانية", "دهوك", "كركوك",
	"الأنبار", "ديالى", "كربلاء", "النجف", "واسط", "بابل",
	"ميسان", "القادسية", "ذي قار", "المثنى", "صلاح الدين",
}

type Job struct {
	ID             string   `json:"id" bson:"_id"`
	Title          string   `json:"title" bson:"title"`
	TitleEn        string   `json:"titleEn,omitempty" bson:"titleEn,omitempty"`
	Company        string   `json:"company" bson:"company"`
	Location       string   `json:"location" bson:"location"`
	City           string   `json:"city" bson:"city"`
	Type           JobType  `json:"type" bson:"type"`
	Sector         Sector   `json:"sector" bson:"sector"`
	Salary         string   `json:"salary" bson:"salary"`
	PostedAt       string   `json:"postedAt" bson:"postedAt"`
	Description    string   `json:"description" bson:"description"`
	DescriptionEn  string   `json:"descriptionEn,omitempty" bson:"descriptionEn,omitempty"`
	Requirements   []string `json:"requirements" bson:"requirements"`
	RequirementsEn []string `json:"requirementsEn,omitempty" bson:"requirementsEn,omitempty"`
	Views          int      `json:"views,omitempty" bson:"views,omitempty"`
	Source         string   `json:"source,omitempty" bson:"source,omitempty"`
	SourceURL      string   `json:"sourceUrl,omitempty" bson:"sourceUrl,omitempty"`
	IsUrgent       bool     `json:"isUrgent,omitempty" bson:"isUrgent,omitempty"`
}

type ServiceItem struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	IconName    string     `json:"iconName" bson:"iconName"`
	PriceType   string     `json:"priceType" bson:"priceType"`
	Price       string     `json:"price,omitempty" bson:"price,omitempty"`
	PriceUnit   string     `json:"priceUnit,omitempty" bson:"priceUnit,omitempty"`
	UserID      string     `json:"userId,omitempty" bson:"userId,omitempty"`
	Status      ItemStatus `json:"status,omitempty" bson:"status,omitempty"`
}

type Announcement struct {
	ID          string `json:"id" bson:"_id"`
	Content     string `json:"content" bson:"content"`
	Date        string `json:"date" bson:"date"`
	IsImportant bool   `json:"isImportant" bson:"isImportant"`
	Link        string `json:"link,omitempty" bson:"link,omitempty"`
}

// SourceItem is an entry of the external job or news link registries.
type SourceItem struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
}

type RecruitmentAgency struct {
	ID         string `json:"id" bson:"_id"`
	Name       string `json:"name" bson:"name"`
	WebsiteURL string `json:"websiteUrl,omitempty" bson:"websiteUrl,omitempty"`
}

type Article struct {
	ID        string     `json:"id" bson:"_id"`
	Title     string     `json:"title" bson:"title"`
	Category  string     `json:"category" bson:"category"`
	Date      string     `json:"date" bson:"date"`
	Author    string     `json:"author" bson:"author"`
	Excerpt   string     `json:"excerpt" bson:"excerpt"`
	Content   string     `json:"content" bson:"content"`
	UserID    string     `json:"userId,omitempty" bson:"userId,omitempty"`
	Status    ItemStatus `json:"status,omitempty" bson:"status,omitempty"`
	Source    string     `json:"source,omitempty" bson:"source,omitempty"`
	SourceURL string     `json:"sourceUrl,omitempty" bson:"sourceUrl,omitempty"`
}

// ArticleCategories are the categories offered by the article forms.
var ArticleCategories = []string{
	"المقابلات الشخصية",
	"السيرة الذاتية",
	"التحفيز المهني",
	"تطوير المهارات",
	"سوق العمل",
	"عام",
}

type SiteSettings struct {
	AboutDescription string `json:"aboutDescription" bson:"aboutDescription"`
	Mission          string `json:"mission" bson:"mission"`
	Vision           string `json:"vision" bson:"vision"`
	TeamDescription  string `json:"teamDescription" bson:"teamDescription"`
	ContactEmail     string `json:"contactEmail" bson:"contactEmail"`
	FacebookURL      string `json:"facebookUrl" bson:"facebookUrl"`
	LinkedInURL      string `json:"linkedInUrl" bson:"linkedInUrl"`
	InstagramURL     string `json:"instagramUrl" bson:"instagramUrl"`
	WhatsappNumber   string `json:"whatsappNumber" bson:"whatsappNumber"`
}

// DefaultSiteSettings returns the settings shown before an admin edits them.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		AboutDescription: "مجتمع العمل العراقي هو منصة رقمية رائدة تهدف إلى سد الفجوة بين الكفاءات العراقية وسوق العمل المتطور، من خلال توفير أدوات ذكية وبيئة آمنة للنمو المهني.",
		Mission:          "نسعى لتمكين الشباب العراقي من خلال توفير منصة موثوقة تربطهم بفرص العمل الحقيقية وتزودهم بالمهارات اللازمة للنجاح.",
		Vision:           "أن نكون المرجع الأول والمنصة الأكثر موثوقية لسوق العمل الرقمي في العراق، مع المساهمة الفعالة في تقليل نسبة البطالة وتطوير الكفاءات الوطنية.",
		TeamDescription:  "نحن فريق من المتخصصين العراقيين في مجالات التكنولوجيا والموارد البشرية، نعمل بشغف لخلق بيئة عمل رقمية تخدم الجميع بشفافية واحترافية.",
		ContactEmail:     "info@iraqjobs.iq",
		FacebookURL:      "https://facebook.com/iraqjobs",
		LinkedInURL:      "https://linkedin.com/company/iraqjobs",
		InstagramURL:     "https://instagram.com/iraqjobs",
		WhatsappNumber:   "+9647700000000",
	}
}

type Experience struct {
	ID          string `json:"id" bson:"id"`
	Company     string `json:"company" bson:"company"`
	Title       string `json:"title" bson:"title"`
	StartDate   string `json:"startDate" bson:"startDate"`
	EndDate     string `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Current     bool   `json:"current" bson:"current"`
	Description string `json:"description" bson:"description"`
}

type Education struct {
	ID     string `json:"id" bson:"id"`
	School string `json:"school" bson:"school"`
	Degree string `json:"degree" bson:"degree"`
	Field  string `json:"field" bson:"field"`
	Year   string `json:"year" bson:"year"`
}

type User struct {
	ID                 string       `json:"id,omitempty" bson:"_id,omitempty"`
	Name               string       `json:"name" bson:"name"`
	Email              string       `json:"email" bson:"email"`
	Role               UserRole     `json:"role" bson:"role"`
	Status             UserStatus   `json:"status,omitempty" bson:"status,omitempty"`
	Governorate        string       `json:"governorate,omitempty" bson:"governorate,omitempty"`
	CanProvideServices bool         `json:"canProvideServices,omitempty" bson:"canProvideServices,omitempty"`
	CanWriteArticles   bool         `json:"canWriteArticles,omitempty" bson:"canWriteArticles,omitempty"`
	InterestedSector   Sector       `json:"interestedSector,omitempty" bson:"interestedSector,omitempty"`
	CompanyName        string       `json:"companyName,omitempty" bson:"companyName,omitempty"`
	CreatedAt          string       `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	Bio                string       `json:"bio,omitempty" bson:"bio,omitempty"`
	Phone              string       `json:"phone,omitempty" bson:"phone,omitempty"`
	Skills             []string     `json:"skills,omitempty" bson:"skills,omitempty"`
	Experience         []Experience `json:"experience,omitempty" bson:"experience,omitempty"`
	Education          []Education  `json:"education,omitempty" bson:"education,omitempty"`
	Website            string       `json:"website,omitempty" bson:"website,omitempty"`
	ProfileImage       string       `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	CVURL              string       `json:"cvUrl,omitempty" bson:"cvUrl,omitempty"`
	CVName             string       `json:"cvName,omitempty" bson:"cvName,omitempty"`
}
