// internal/app/features/student/content.go
package student

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Activity is one row of the class activities table.
type Activity struct {
	Slug   string
	Course string
	Title  string
	Due    string
	// Action is the button label ("View", "Submit", "Start").
	Action string
}

// Notification is one entry of the notification feed.
type Notification struct {
	Title string
	Body  string
	Date  string
}

// LabAction is one of the programming lab buttons.
type LabAction struct {
	ID      string
	Label   string
	Message string
}

// Resource is a library entry. Shelf groups resources on the page.
type Resource struct {
	Slug  string
	Shelf string
	Title string
}

// Shelf ids, in display order.
const (
	ShelfMaterials = "course-materials"
	ShelfBooks     = "reference-books"
	ShelfExternal  = "external-resources"
)

var shelfTitles = map[string]string{
	ShelfMaterials: "Course Materials",
	ShelfBooks:     "Reference Books",
	ShelfExternal:  "External Resources",
}

// Content is everything the student dashboard shows. The backend has no
// student endpoints yet, so the dashboard is built from this fixed set.
type Content struct {
	Activities    []Activity
	Notifications []Notification
	LabDone       int
	LabTotal      int
	LabActions    []LabAction
	Library       []Resource
}

// DefaultContent is the catalog shown to every student.
func DefaultContent() Content {
	return Content{
		Activities: []Activity{
			{Slug: "html-basics-quiz", Course: "Web Development", Title: "HTML Basics Quiz", Due: "Due Friday", Action: "View"},
			{Slug: "loops-assignment", Course: "Programming Fundamentals", Title: "Loops Assignment", Due: "Due Monday", Action: "Submit"},
			{Slug: "er-diagram-project", Course: "Database Systems", Title: "ER Diagram Project", Due: "Due next week", Action: "Start"},
		},
		Notifications: []Notification{
			{Title: "Welcome aboard", Body: "Your enrollment is active. Explore your courses from the sidebar.", Date: "Today"},
			{Title: "New activity posted", Body: "Loops Assignment is now open in Programming Fundamentals.", Date: "Yesterday"},
			{Title: "Live lab this week", Body: "Join the Thursday lab session for guided practice.", Date: "2 days ago"},
			{Title: "Library update", Body: "Three new reference books were added to the library.", Date: "Last week"},
		},
		LabDone:  24,
		LabTotal: 50,
		LabActions: []LabAction{
			{ID: "join-lab", Label: "Join Live Lab", Message: "Joining live lab session..."},
			{ID: "start-practice", Label: "Start Practice", Message: "Starting practice problems..."},
			{ID: "view-progress", Label: "View Progress", Message: "Opening progress dashboard..."},
		},
		Library: []Resource{
			{Slug: "web-dev-slides", Shelf: ShelfMaterials, Title: "Web Development Lecture Slides"},
			{Slug: "programming-notes", Shelf: ShelfMaterials, Title: "Programming Fundamentals Notes"},
			{Slug: "sql-workbook", Shelf: ShelfMaterials, Title: "SQL Practice Workbook"},
			{Slug: "eloquent-javascript", Shelf: ShelfBooks, Title: "Eloquent JavaScript"},
			{Slug: "clean-code", Shelf: ShelfBooks, Title: "Clean Code"},
			{Slug: "database-concepts", Shelf: ShelfBooks, Title: "Database System Concepts"},
			{Slug: "mdn-web-docs", Shelf: ShelfExternal, Title: "MDN Web Docs"},
			{Slug: "go-tour", Shelf: ShelfExternal, Title: "A Tour of Go"},
			{Slug: "sql-tutorial", Shelf: ShelfExternal, Title: "Interactive SQL Tutorial"},
		},
	}
}

// Activity finds an activity by slug.
func (c Content) Activity(slug string) (Activity, bool) {
	for _, a := range c.Activities {
		if a.Slug == slug {
			return a, true
		}
	}
	return Activity{}, false
}

// LabAction finds a lab action by id.
func (c Content) LabAction(id string) (LabAction, bool) {
	for _, a := range c.LabActions {
		if a.ID == id {
			return a, true
		}
	}
	return LabAction{}, false
}

// Resource finds a library entry by slug.
func (c Content) Resource(slug string) (Resource, bool) {
	for _, r := range c.Library {
		if r.Slug == slug {
			return r, true
		}
	}
	return Resource{}, false
}

// matches reports whether any field contains q, ignoring case and accents.
// An empty query matches everything.
func matches(q string, fields ...string) bool {
	q = text.Fold(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(text.Fold(f), q) {
			return true
		}
	}
	return false
}

// Search returns the activities and library entries matching q.
func (c Content) Search(q string) ([]Activity, []Resource) {
	var acts []Activity
	for _, a := range c.Activities {
		if matches(q, a.Course, a.Title) {
			acts = append(acts, a)
		}
	}
	var res []Resource
	for _, r := range c.Library {
		if matches(q, r.Title) {
			res = append(res, r)
		}
	}
	return acts, res
}
