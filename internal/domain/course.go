package domain

import "time"

// CourseID is the single course row; the landing page sells exactly one.
const CourseID = "default"

// Course holds the editable landing-page copy, the price, and the storage key
// of the deliverable file. ObjectKey stays empty until the admin uploads one.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceINR    int64     `json:"priceINR"`
	ObjectKey   string    `json:"-"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PublicCourse is the unauthenticated view; the object key never leaves the
// server.
type PublicCourse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceINR    int64  `json:"priceINR"`
}

func (c *Course) Public() *PublicCourse {
	return &PublicCourse{Title: c.Title, Description: c.Description, PriceINR: c.PriceINR}
}

// UpdateCourseRequest is the admin edit input.
type UpdateCourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	PriceINR    int64  `json:"priceINR" validate:"required,gt=0"`
}

// AdminLoginRequest is the admin console login input.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginResponse returns the bearer token for the admin console.
type AdminLoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// GrantRequest is the manual entitlement approval input.
type GrantRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UploadURLResponse carries the signed write URL for the deliverable object.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}
