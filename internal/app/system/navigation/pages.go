package navigation

// Where each page lands once credentials are cleared.
const (
	AdminSignedOut   = "/login?as=admin"
	StudentSignedOut = "/"
)

// Admin is the admin console's section set.
var Admin = Set{
	Base: "/admin",
	Sections: []Section{
		{ID: "dashboard", Title: "Dashboard"},
		{ID: "users", Title: "Users"},
		{ID: "applications", Title: "Applications"},
		{ID: "payments", Title: "Payments"},
		{ID: "courses", Title: "Courses"},
		{ID: "settings", Title: "Settings"},
		{ID: "logout", Title: "Logout", Logout: true},
	},
	LogoutTarget: "/logout?as=admin",
}

// Student is the student dashboard's section set.
var Student = Set{
	Base: "/student",
	Sections: []Section{
		{ID: "dashboard", Title: "Dashboard"},
		{ID: "class-activities", Title: "Class Activities"},
		{ID: "notification", Title: "Notification"},
		{ID: "programming-lab", Title: "Programming Lab"},
		{ID: "library", Title: "Library"},
		{ID: "logout", Title: "Logout", Logout: true},
	},
	LogoutTarget: "/logout?as=student",
}
