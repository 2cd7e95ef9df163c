package contribution

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/chama/pkg/response"
)

// Handler handles HTTP requests for contribution operations
type Handler struct {
	service *Service
}

// NewHandler creates a new contribution handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for contribution endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/member/{memberId}", h.ForMember)
	r.Get("/group/{groupId}", h.ForGroup)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*ContributionRequest, bool) {
	var req ContributionRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return nil, false
	}
	return &req, true
}

// Create handles POST /contributions
// @Summary      Record a contribution
// @Description  Amount has at most 2 decimal places and 10 digits. Type defaults to savings, channel to app.
// @Tags         contributions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ContributionRequest true "Contribution creation request"
// @Success      201 {object} response.APIResponse{data=ContributionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /contributions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.FromError(w, err, "Failed to create contribution")
		return
	}

	response.JSON(w, http.StatusCreated, c.ToResponse())
}

// List handles GET /contributions
// @Summary      List contributions
// @Description  Every contribution, newest date first, then member name
// @Tags         contributions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]ContributionResponse}
// @Router       /contributions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.service.List(r.Context())
	if err != nil {
		response.FromError(w, err, "Failed to list contributions")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(contributions))
}

// GetByID handles GET /contributions/{id}
// @Summary      Get contribution by ID
// @Tags         contributions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Contribution ID"
// @Success      200 {object} response.APIResponse{data=ContributionResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /contributions/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid contribution ID")
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		response.FromError(w, err, "Failed to get contribution")
		return
	}

	response.JSON(w, http.StatusOK, c.ToResponse())
}

// Update handles PUT /contributions/{id}
// @Summary      Update a contribution
// @Tags         contributions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Contribution ID"
// @Param        request body ContributionRequest true "Contribution update request"
// @Success      200 {object} response.APIResponse{data=ContributionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /contributions/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid contribution ID")
		return
	}

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		response.FromError(w, err, "Failed to update contribution")
		return
	}

	response.JSON(w, http.StatusOK, c.ToResponse())
}

// Delete handles DELETE /contributions/{id}
// @Summary      Delete a contribution
// @Tags         contributions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Contribution ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /contributions/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid contribution ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, err, "Failed to delete contribution")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Contribution deleted successfully"})
}

// ForMember handles GET /contributions/member/{memberId}
// @Summary      Contributions of a member
// @Description  A member's contributions, newest first, with totals by type and channel
// @Tags         contributions
// @Produce      json
// @Security     BearerAuth
// @Param        memberId path int true "Member ID"
// @Success      200 {object} response.APIResponse{data=MemberContributionsResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /contributions/member/{memberId} [get]
func (h *Handler) ForMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid member ID")
		return
	}

	mc, err := h.service.ForMember(r.Context(), memberID)
	if err != nil {
		response.FromError(w, err, "Failed to get member contributions")
		return
	}

	response.JSON(w, http.StatusOK, mc.ToResponse())
}

// ForGroup handles GET /contributions/group/{groupId}
// @Summary      Contributions of a group
// @Description  Contributions of every member of the group, newest first then by member name, with totals
// @Tags         contributions
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupContributionsResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /contributions/group/{groupId} [get]
func (h *Handler) ForGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	gc, err := h.service.ForGroup(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err, "Failed to get group contributions")
		return
	}

	response.JSON(w, http.StatusOK, gc.ToResponse())
}
