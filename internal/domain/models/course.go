// internal/domain/models/course.go
package models

// Course is a catalog entry as listed by GET /api/admin/courses.
// Description may contain markup and is sanitized before rendering.
type Course struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Amount `json:"price"`
}
