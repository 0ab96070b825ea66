package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/application/identity"
)

// RoleHandler handles role management HTTP requests
type RoleHandler struct {
	BaseHandler
	roleService *identity.RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(base BaseHandler, roleService *identity.RoleService) *RoleHandler {
	return &RoleHandler{
		BaseHandler: base,
		roleService: roleService,
	}
}

// Create godoc
//
//	@ID				createRole
//	@Summary		Create a new role
//	@Description	Permissions must come from the permission catalogue
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identity.CreateRoleRequest	true	"Role creation request"
//	@Success		201		{object}	dto.Response{data=identity.RoleResponse}
//	@Failure		409		{object}	ErrorResponse	"Name already in use"
//	@Failure		422		{object}	ValidationErrorResponse
//	@Security		BearerAuth
//	@Router			/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req identity.CreateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, role)
}

// GetByID godoc
//
//	@ID			getRole
//	@Summary	Get role by ID
//	@Tags		roles
//	@Produce	json
//	@Param		id	path		string	true	"Role ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=identity.RoleResponse}
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/roles/{id} [get]
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// List godoc
//
//	@ID			listRoles
//	@Summary	List roles
//	@Tags		roles
//	@Produce	json
//	@Param		search		query		string	false	"Search term"
//	@Param		is_system	query		bool	false	"System roles only"
//	@Param		page		query		int		false	"Page number"	default(1)
//	@Param		page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success	200			{object}	dto.Response{data=[]identity.RoleResponse,meta=dto.Meta}
//	@Security	BearerAuth
//	@Router		/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	var filter identity.RoleListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.roleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// Update godoc
//
//	@ID				updateRole
//	@Summary		Update a role
//	@Description	Permission changes reach the role's users when they next log in or refresh
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Role ID"	format(uuid)
//	@Param			request	body		identity.UpdateRoleRequest	true	"Role update request"
//	@Success		200		{object}	dto.Response{data=identity.RoleResponse}
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ConflictResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Security		BearerAuth
//	@Router			/roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req identity.UpdateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// Delete godoc
//
//	@ID				deleteRole
//	@Summary		Delete a role
//	@Description	System roles and roles still assigned to users cannot be deleted
//	@Tags			roles
//	@Produce		json
//	@Param			id		path		string	true	"Role ID"	format(uuid)
//	@Param			version	query		int		false	"Expected version"
//	@Success		200		{object}	MessageResponse
//	@Failure		409		{object}	ConflictResponse
//	@Failure		422		{object}	ErrorResponse	"Role in use"
//	@Security		BearerAuth
//	@Router			/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	version, ok := h.DeleteVersion(c)
	if !ok {
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Role deleted successfully")
}

// Permissions godoc
//
//	@ID			listPermissions
//	@Summary	Permission catalogue
//	@Tags		roles
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=PermissionList}
//	@Security	BearerAuth
//	@Router		/roles/permissions [get]
func (h *RoleHandler) Permissions(c *gin.Context) {
	h.Success(c, h.roleService.Permissions())
}
