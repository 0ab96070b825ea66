package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/application/identity"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(base BaseHandler, userService *identity.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// Create godoc
//
//	@ID			createUser
//	@Summary	Create a new user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		identity.CreateUserRequest	true	"User creation request"
//	@Success	201		{object}	dto.Response{data=identity.UserResponse}
//	@Failure	409		{object}	ErrorResponse	"Email already in use"
//	@Failure	422		{object}	ValidationErrorResponse
//	@Security	BearerAuth
//	@Router		/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req identity.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// GetByID godoc
//
//	@ID			getUser
//	@Summary	Get user by ID
//	@Tags		users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=identity.UserResponse}
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// List godoc
//
//	@ID			listUsers
//	@Summary	List users
//	@Tags		users
//	@Produce	json
//	@Param		search		query		string	false	"Search name or email"
//	@Param		role_id		query		string	false	"Role ID"	format(uuid)
//	@Param		is_active	query		bool	false	"Active flag"
//	@Param		page		query		int		false	"Page number"	default(1)
//	@Param		page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success	200			{object}	dto.Response{data=[]identity.UserResponse,meta=dto.Meta}
//	@Security	BearerAuth
//	@Router		/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter identity.UserListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// Update godoc
//
//	@ID				updateUser
//	@Summary		Update a user
//	@Description	Deactivating a user or changing their password revokes their sessions
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"	format(uuid)
//	@Param			request	body		identity.UpdateUserRequest	true	"User update request"
//	@Success		200		{object}	dto.Response{data=identity.UserResponse}
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ConflictResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req identity.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete godoc
//
//	@ID				deleteUser
//	@Summary		Delete a user
//	@Description	Users cannot delete themselves
//	@Tags			users
//	@Produce		json
//	@Param			id		path		string	true	"User ID"	format(uuid)
//	@Param			version	query		int		false	"Expected version"
//	@Success		200		{object}	MessageResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ConflictResponse
//	@Failure		422		{object}	ErrorResponse	"Self deletion"
//	@Security		BearerAuth
//	@Router			/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	version, ok := h.DeleteVersion(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorID, id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "User deleted successfully")
}
