package handler

import (
	"net/http"

	"github.com/pratijat22/LetsEarn/internal/domain"
	"github.com/pratijat22/LetsEarn/internal/service"
)

type CourseHandler struct {
	course service.CourseStore
}

func NewCourseHandler(course service.CourseStore) *CourseHandler {
	return &CourseHandler{course: course}
}

// Get handles GET /api/course: the public landing-page copy and price.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.course.Get(r.Context())
	if err != nil {
		Error(w, domain.ErrInternal("failed to load course", err))
		return
	}
	if course == nil {
		Error(w, domain.ErrNotFound("course not available"))
		return
	}
	JSON(w, http.StatusOK, course.Public())
}
