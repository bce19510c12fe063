package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pratijat22/LetsEarn/internal/domain"
	"github.com/pratijat22/LetsEarn/internal/service"
	"github.com/pratijat22/LetsEarn/pkg/blob"
)

// uploadURLTTL bounds how long a signed write URL stays usable.
const uploadURLTTL = 15 * time.Minute

type AdminHandler struct {
	authSvc      *service.AuthService
	course       service.CourseStore
	entitlements service.EntitlementStore
	orderList    OrderLister
	store        blob.Store
}

// OrderLister is the admin console's read view over orders.
type OrderLister interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
}

func NewAdminHandler(authSvc *service.AuthService, course service.CourseStore, entitlements service.EntitlementStore, orderList OrderLister, store blob.Store) *AdminHandler {
	return &AdminHandler{
		authSvc:      authSvc,
		course:       course,
		entitlements: entitlements,
		orderList:    orderList,
		store:        store,
	}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// UploadURL handles POST /api/admin/upload-url: issues a signed write URL for
// a fresh deliverable object and records its key on the course.
func (h *AdminHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	key := "deliverables/" + uuid.New().String()

	url, err := h.store.SignedWriteURL(key, uploadURLTTL)
	if err != nil {
		Error(w, domain.ErrInternal("failed to sign upload URL", err))
		return
	}

	if err := h.course.SetObjectKey(r.Context(), key); err != nil {
		Error(w, domain.ErrInternal("failed to record object key", err))
		return
	}

	JSON(w, http.StatusOK, domain.UploadURLResponse{UploadURL: url, ObjectKey: key})
}

// GetCourse handles GET /api/admin/course.
func (h *AdminHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.course.Get(r.Context())
	if err != nil {
		Error(w, domain.ErrInternal("failed to load course", err))
		return
	}
	if course == nil {
		Error(w, domain.ErrNotFound("course not seeded"))
		return
	}
	JSON(w, http.StatusOK, course)
}

// UpdateCourse handles PUT /api/admin/course.
func (h *AdminHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCourseRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	course := &domain.Course{
		ID:          domain.CourseID,
		Title:       req.Title,
		Description: req.Description,
		PriceINR:    req.PriceINR,
	}
	if err := h.course.Update(r.Context(), course); err != nil {
		Error(w, domain.ErrInternal("failed to update course", err))
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Grant handles POST /api/admin/grant: manual entitlement approval.
func (h *AdminHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req domain.GrantRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	ent := &domain.Entitlement{
		Email:     domain.NormalizeEmail(req.Email),
		Granted:   true,
		UpdatedAt: time.Now(),
	}
	if err := h.entitlements.Upsert(r.Context(), ent); err != nil {
		Error(w, domain.ErrInternal("failed to grant entitlement", err))
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderList.ListRecent(r.Context(), 100)
	if err != nil {
		Error(w, domain.ErrInternal("failed to list orders", err))
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	JSON(w, http.StatusOK, orders)
}
