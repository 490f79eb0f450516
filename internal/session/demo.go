package session

import "github.com/garnizeh/jobboard/pkg/models"

// DemoUser returns the canned profile for one of the three demo credential
// pairs. Identifier and secret must match exactly.
func DemoUser(identifier, secret string) (models.User, bool) {
	if identifier != secret {
		return models.User{}, false
	}
	switch identifier {
	case "admin":
		return models.User{ID: "admin", Name: "مدير النظام (Demo)", Email: "admin", Role: models.RoleAdmin}, true
	case "seeker":
		return models.User{ID: "seeker", Name: "أحمد الباحث (Demo)", Email: "seeker", Role: models.RoleSeeker, Governorate: "بغداد"}, true
	case "employer":
		return models.User{
			ID:          "employer",
			Name:        "سارة محمد (Demo)",
			Email:       "employer",
			Role:        models.RoleRecruiter,
			CompanyName: "شركة النهرين للتقنية",
			Governorate: "البصرة",
		}, true
	}
	return models.User{}, false
}
