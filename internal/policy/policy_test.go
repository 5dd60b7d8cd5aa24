package policy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"yamdb/internal/apperr"
	"yamdb/internal/models"
)

var (
	anon      = Anonymous()
	alice     = Caller{UserID: 1, Username: "alice", Role: models.RoleUser, Authenticated: true}
	bob       = Caller{UserID: 2, Username: "bob", Role: models.RoleUser, Authenticated: true}
	moderator = Caller{UserID: 3, Username: "mod", Role: models.RoleModerator, Authenticated: true}
	admin     = Caller{UserID: 4, Username: "root", Role: models.RoleAdmin, Authenticated: true}
	superuser = Caller{UserID: 5, Username: "su", Role: models.RoleUser, IsSuperuser: true, Authenticated: true}
)

func TestCatalogPolicy(t *testing.T) {
	cases := []struct {
		caller Caller
		method string
		want   bool
	}{
		{anon, http.MethodGet, true},
		{anon, http.MethodPost, false},
		{alice, http.MethodGet, true},
		{alice, http.MethodPost, false},
		{moderator, http.MethodDelete, false},
		{admin, http.MethodPost, true},
		{admin, http.MethodDelete, true},
		{superuser, http.MethodPatch, true},
	}
	for _, tc := range cases {
		req := Request{Method: tc.method, Caller: tc.caller}
		assert.Equal(t, tc.want, Catalog.HasPermission(req), "%s %s", tc.caller.Username, tc.method)
	}
}

func TestDiscussionObjectPolicy(t *testing.T) {
	const owner = 1 // alice

	cases := []struct {
		name   string
		caller Caller
		method string
		want   bool
	}{
		{"anonymous read", anon, http.MethodGet, true},
		{"anonymous write", anon, http.MethodPatch, false},
		{"author edits own", alice, http.MethodPatch, true},
		{"author deletes own", alice, http.MethodDelete, true},
		{"other user edits", bob, http.MethodPatch, false},
		{"other user reads", bob, http.MethodGet, true},
		{"moderator edits others", moderator, http.MethodPatch, true},
		{"moderator deletes others", moderator, http.MethodDelete, true},
		{"admin edits others", admin, http.MethodPatch, true},
		{"superuser edits others", superuser, http.MethodDelete, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := Request{Method: tc.method, Caller: tc.caller}
			assert.Equal(t, tc.want, Discussion.HasObjectPermission(req, owner))
		})
	}
}

func TestDiscussionCollectionPolicy(t *testing.T) {
	assert.True(t, Discussion.HasPermission(Request{Method: http.MethodGet, Caller: anon}))
	assert.False(t, Discussion.HasPermission(Request{Method: http.MethodPost, Caller: anon}))
	assert.True(t, Discussion.HasPermission(Request{Method: http.MethodPost, Caller: bob}))
}

func TestUserAdminAndSelf(t *testing.T) {
	for _, c := range []Caller{anon, alice, moderator} {
		assert.False(t, UserAdmin.HasPermission(Request{Method: http.MethodGet, Caller: c}))
	}
	assert.True(t, UserAdmin.HasPermission(Request{Method: http.MethodGet, Caller: admin}))
	assert.True(t, UserAdmin.HasPermission(Request{Method: http.MethodDelete, Caller: superuser}))

	assert.False(t, Self.HasPermission(Request{Method: http.MethodGet, Caller: anon}))
	assert.True(t, Self.HasPermission(Request{Method: http.MethodPatch, Caller: alice}))
}

type countingPolicy struct {
	grant bool
	calls *int
}

func (p countingPolicy) HasPermission(Request) bool {
	*p.calls++
	return p.grant
}

func (p countingPolicy) HasObjectPermission(Request, uint) bool { return p.grant }

func TestAnyOfShortCircuits(t *testing.T) {
	var first, second int
	p := AnyOf(countingPolicy{grant: true, calls: &first}, countingPolicy{grant: true, calls: &second})

	assert.True(t, p.HasPermission(Request{Method: http.MethodGet}))
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}

func TestAnyOfEmptyDenies(t *testing.T) {
	p := AnyOf()
	assert.False(t, p.HasPermission(Request{Method: http.MethodGet, Caller: admin}))
	assert.False(t, p.HasObjectPermission(Request{Method: http.MethodGet, Caller: admin}, 0))
}

func TestAuthorizeErrors(t *testing.T) {
	assert.NoError(t, Authorize(Catalog, Request{Method: http.MethodGet, Caller: anon}))
	assert.ErrorIs(t, Authorize(Catalog, Request{Method: http.MethodPost, Caller: anon}), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(Catalog, Request{Method: http.MethodPost, Caller: alice}), apperr.ErrForbidden)

	assert.NoError(t, AuthorizeObject(Discussion, Request{Method: http.MethodPatch, Caller: alice}, alice.UserID))
	assert.ErrorIs(t, AuthorizeObject(Discussion, Request{Method: http.MethodPatch, Caller: bob}, alice.UserID), apperr.ErrForbidden)
	assert.ErrorIs(t, AuthorizeObject(Discussion, Request{Method: http.MethodDelete, Caller: anon}, alice.UserID), apperr.ErrUnauthenticated)
}

func TestFromUser(t *testing.T) {
	c := FromUser(&models.User{ID: 9, Username: "zed", Role: models.RoleModerator})
	assert.True(t, c.Authenticated)
	assert.True(t, c.IsModerator())
	assert.False(t, c.IsAdmin())
}
