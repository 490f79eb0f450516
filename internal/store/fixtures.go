package store

import "github.com/garnizeh/jobboard/pkg/models"

// FixtureSet is the bundled data both modes start from.
type FixtureSet struct {
	Jobs          []models.Job
	Services      []models.ServiceItem
	Announcements []models.Announcement
	Agencies      []models.RecruitmentAgency
	Articles      []models.Article
	JobSources    []models.SourceItem
	NewsSources   []models.SourceItem
	Users         []models.User
	Settings      models.SiteSettings
}

// Fixtures returns a fresh copy of the bundled data.
func Fixtures() FixtureSet {
	return FixtureSet{
		Jobs: []models.Job{
			{
				ID:             "1",
				Title:          "مطور واجهات أمامية (React)",
				TitleEn:        "Frontend Developer (React)",
				Company:        "شركة دجلة للحلول البرمجية",
				Location:       "بغداد",
				City:           "المنصور",
				Type:           models.JobTypeFullTime,
				Sector:         models.SectorTech,
				Salary:         "1,500,000 - 2,500,000 د.ع",
				PostedAt:       "منذ يومين",
				Description:    "نبحث عن مطور واجهات أمامية موهوب للانضمام إلى فريقنا. يجب أن يكون لديك خبرة في React و Tailwind CSS.",
				DescriptionEn:  "We are looking for a talented Frontend Developer to join our team. You must have experience with React and Tailwind CSS. You will be responsible for building user-friendly interfaces and ensuring high performance.",
				Requirements:   []string{"خبرة 3 سنوات", "إجادة TypeScript", "معرفة بـ Git"},
				RequirementsEn: []string{"3+ years of experience", "Proficiency in TypeScript", "Knowledge of Git"},
				Source:         "فرص العراق",
			},
			{
				ID:             "2",
				Title:          "مهندس موقع مدني",
				TitleEn:        "Civil Site Engineer",
				Company:        "مجموعة الإعمار العراقية",
				Location:       "البصرة",
				City:           "الزبير",
				Type:           models.JobTypeFullTime,
				Sector:         models.SectorEngineering,
				Salary:         "قابل للتفاوض",
				PostedAt:       "منذ 4 ساعات",
				Description:    "مطلوب مهندس مدني للإشراف على مواقع البناء وضمان الجودة والسلامة.",
				DescriptionEn:  "Civil Engineer required to supervise construction sites and ensure quality and safety standards are met. The role involves managing site operations and coordinating with subcontractors.",
				Requirements:   []string{"بكالوريوس هندسة مدنية", "خبرة موقعية", "تحمل ضغط العمل"},
				RequirementsEn: []string{"Bachelor in Civil Engineering", "Site experience", "Ability to work under pressure"},
				Source:         "LinkedIn",
				SourceURL:      "https://linkedin.com/jobs",
			},
		},
		Services: []models.ServiceItem{
			{
				ID:          "1",
				Title:       "كتابة السيرة الذاتية",
				Description: "احصل على سيرة ذاتية احترافية مصممة خصيصاً لتناسب سوق العمل العراقي والشركات العالمية.",
				IconName:    "cv",
				PriceType:   "paid",
				Price:       "25,000 د.ع",
			},
			{
				ID:          "2",
				Title:       "دورات تدريبية وتطوير",
				Description: "ورش عمل في مهارات الحاسوب، اللغة الإنجليزية، والمهارات الإدارية لزيادة فرصك في التوظيف.",
				IconName:    "training",
				PriceType:   "free",
			},
			{
				ID:          "3",
				Title:       "استشارات مهنية",
				Description: "جلسات استشارية مع خبراء موارد بشرية لتوجيه مسارك المهني والاستعداد للمقابلات.",
				IconName:    "consulting",
				PriceType:   "paid",
				Price:       "حسب نوع الجلسة",
			},
		},
		Announcements: []models.Announcement{
			{
				ID:          "1",
				Content:     "مجلس الخدمة الاتحادي يطلق استمارة التوظيف لحملة الشهادات العليا والأوائل.",
				Date:        "2024-05-20",
				IsImportant: true,
				Link:        "#",
			},
		},
		Agencies: []models.RecruitmentAgency{
			{ID: "1", Name: "MSelect", WebsiteURL: "https://www.mselect.com/"},
			{ID: "2", Name: "Miswag", WebsiteURL: "https://miswag.net/careers"},
		},
		Articles: []models.Article{
			{
				ID:       "1",
				Title:    "كيف تجتاز مقابلة العمل بنجاح؟",
				Category: "المقابلات الشخصية",
				Date:     "2024-05-15",
				Author:   "فريق التوظيف",
				Excerpt:  "أهم الأسئلة الشائعة في مقابلات العمل وكيفية الإجابة عليها باحترافية لضمان قبولك.",
				Content:  "تعتبر مقابلة العمل الخطوة الأهم في رحلة البحث عن وظيفة...",
			},
		},
		JobSources: []models.SourceItem{
			{ID: "1", Name: "LinkedIn Iraq", URL: "https://www.linkedin.com/jobs/search/?geoId=104305537&location=Iraq"},
			{ID: "2", Name: "Bayt.com Iraq", URL: "https://www.bayt.com/ar/iraq/jobs/"},
		},
		NewsSources: []models.SourceItem{
			{ID: "1", Name: "وكالة الأنباء العراقية", URL: "https://ina.iq/"},
		},
		Users: []models.User{
			{ID: "u1", Name: "أحمد علي", Email: "ahmed@test.com", Role: models.RoleSeeker, Status: models.UserStatusActive, Governorate: "بغداد"},
			{ID: "u2", Name: "سارة محمد", Email: "sara@test.com", Role: models.RoleRecruiter, Status: models.UserStatusPending, CompanyName: "تقنيات الرافدين"},
			{ID: "admin", Name: "مدير النظام", Email: "admin@iraqjobs.com", Role: models.RoleAdmin, Status: models.UserStatusActive},
		},
		Settings: models.DefaultSiteSettings(),
	}
}
