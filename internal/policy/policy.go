// Package policy decides whether a caller may perform an action on a
// resource collection or on a single owned object.
//
// A Policy answers two questions: HasPermission for the collection-level
// admission check, HasObjectPermission once the target object and its
// owner are known. Policies are composed with AnyOf.
package policy

import (
	"net/http"

	"yamdb/internal/apperr"
	"yamdb/internal/models"
)

// Caller is the identity a request runs as.
type Caller struct {
	UserID        uint
	Username      string
	Role          models.Role
	IsSuperuser   bool
	Authenticated bool
}

// Anonymous returns the caller used when no credentials were presented.
func Anonymous() Caller {
	return Caller{}
}

// FromUser builds an authenticated caller from a stored user.
func FromUser(u *models.User) Caller {
	return Caller{
		UserID:        u.ID,
		Username:      u.Username,
		Role:          u.Role,
		IsSuperuser:   u.IsSuperuser,
		Authenticated: true,
	}
}

// IsAdmin reports admin role or superuser flag.
func (c Caller) IsAdmin() bool {
	return c.Authenticated && (c.Role == models.RoleAdmin || c.IsSuperuser)
}

// IsModerator reports moderator role or anything stronger.
func (c Caller) IsModerator() bool {
	return c.Authenticated && (c.Role == models.RoleModerator || c.IsAdmin())
}

type Request struct {
	Method string
	Caller Caller
}

// IsSafe reports whether method is read-only.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

type Policy interface {
	HasPermission(req Request) bool
	HasObjectPermission(req Request, ownerID uint) bool
}

type readOnly struct{}

func (readOnly) HasPermission(req Request) bool { return IsSafe(req.Method) }
func (readOnly) HasObjectPermission(req Request, _ uint) bool {
	return IsSafe(req.Method)
}

type isAdmin struct{}

func (isAdmin) HasPermission(req Request) bool { return req.Caller.IsAdmin() }

// Admins act on any object.
func (isAdmin) HasObjectPermission(Request, uint) bool { return true }

type isAuthenticated struct{}

func (isAuthenticated) HasPermission(req Request) bool { return req.Caller.Authenticated }
func (isAuthenticated) HasObjectPermission(req Request, _ uint) bool {
	return req.Caller.Authenticated
}

type isAuthorOrReadOnly struct{}

func (isAuthorOrReadOnly) HasPermission(req Request) bool {
	return IsSafe(req.Method) || req.Caller.Authenticated
}

func (isAuthorOrReadOnly) HasObjectPermission(req Request, ownerID uint) bool {
	if IsSafe(req.Method) {
		return true
	}
	c := req.Caller
	return c.Authenticated && (c.UserID == ownerID || c.IsSuperuser)
}

type isModeratorOrAdminOrReadOnly struct{}

func (isModeratorOrAdminOrReadOnly) HasPermission(req Request) bool {
	return IsSafe(req.Method) || req.Caller.Authenticated
}

func (isModeratorOrAdminOrReadOnly) HasObjectPermission(req Request, _ uint) bool {
	return IsSafe(req.Method) || req.Caller.IsModerator()
}

var (
	ReadOnly                     Policy = readOnly{}
	IsAdmin                      Policy = isAdmin{}
	IsAuthenticated              Policy = isAuthenticated{}
	IsAuthorOrReadOnly           Policy = isAuthorOrReadOnly{}
	IsModeratorOrAdminOrReadOnly Policy = isModeratorOrAdminOrReadOnly{}
)

// Any is an ordered OR of policies. Evaluation stops at the first grant.
type Any []Policy

// AnyOf composes policies with short-circuit OR.
func AnyOf(policies ...Policy) Any {
	return Any(policies)
}

func (a Any) HasPermission(req Request) bool {
	for _, p := range a {
		if p.HasPermission(req) {
			return true
		}
	}
	return false
}

// HasObjectPermission grants when some member passes both checks. A member
// that denies the collection-level check cannot grant object access.
func (a Any) HasObjectPermission(req Request, ownerID uint) bool {
	for _, p := range a {
		if p.HasPermission(req) && p.HasObjectPermission(req, ownerID) {
			return true
		}
	}
	return false
}

// Presets used by the HTTP layer and the services.
var (
	Catalog    = AnyOf(IsAdmin, ReadOnly)
	Discussion = AnyOf(IsAuthorOrReadOnly, IsModeratorOrAdminOrReadOnly)
	UserAdmin  = AnyOf(IsAdmin)
	Self       = AnyOf(IsAuthenticated)
)

// Authorize runs the collection-level check.
func Authorize(p Policy, req Request) error {
	if p.HasPermission(req) {
		return nil
	}
	return deny(req)
}

// AuthorizeObject runs both checks against an object owned by ownerID.
func AuthorizeObject(p Policy, req Request, ownerID uint) error {
	if p.HasPermission(req) && p.HasObjectPermission(req, ownerID) {
		return nil
	}
	return deny(req)
}

func deny(req Request) error {
	if !req.Caller.Authenticated {
		return apperr.ErrUnauthenticated
	}
	return apperr.ErrForbidden
}
