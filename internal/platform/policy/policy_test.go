// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okoshkin/revu/internal/platform/policy"
	"github.com/okoshkin/revu/internal/platform/sec"
)

var (
	anonymous = policy.Capabilities{}
	member    = policy.Capabilities{Authenticated: true}
	moderator = policy.Capabilities{Authenticated: true, Moderator: true}
	admin     = policy.Capabilities{Authenticated: true, Admin: true}
)

/*
TestDecide_OpenReads verifies that list and retrieve are open to everyone on
every catalogue and social resource, including anonymous callers.
*/
func TestDecide_OpenReads(t *testing.T) {
	resources := []policy.Resource{
		policy.ResourceCategory, policy.ResourceGenre, policy.ResourceTitle,
		policy.ResourceReview, policy.ResourceComment,
	}
	callers := []policy.Capabilities{anonymous, member, moderator, admin}

	for _, resource := range resources {
		for _, caps := range callers {
			assert.True(t, policy.Decide(caps, policy.ActionList, resource, policy.OwnershipUnknown).Allowed())
			assert.True(t, policy.Decide(caps, policy.ActionRetrieve, resource, policy.OwnershipUnknown).Allowed())
		}
	}
}

/*
TestDecide_CatalogueWrites verifies that catalogue mutations are reserved
for admins.
*/
func TestDecide_CatalogueWrites(t *testing.T) {
	tests := []struct {
		name    string
		caps    policy.Capabilities
		allowed bool
	}{
		{"anonymous_denied", anonymous, false},
		{"member_denied", member, false},
		{"moderator_denied", moderator, false},
		{"admin_allowed", admin, true},
	}

	resources := []policy.Resource{policy.ResourceCategory, policy.ResourceGenre, policy.ResourceTitle}
	actions := []policy.Action{policy.ActionCreate, policy.ActionUpdate, policy.ActionPartialUpdate, policy.ActionDelete}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, resource := range resources {
				for _, action := range actions {
					decision := policy.Decide(tt.caps, action, resource, policy.OwnershipUnknown)
					assert.Equal(t, tt.allowed, decision.Allowed(),
						"resource=%d action=%s", resource, action)
				}
			}
		})
	}
}

/*
TestDecide_SocialContent covers the ownership matrix for reviews and
comments: owner or admin may do anything, moderators hold a delete-only
grant on other members' content, and anonymous callers are always denied.
*/
func TestDecide_SocialContent(t *testing.T) {
	tests := []struct {
		name      string
		caps      policy.Capabilities
		action    policy.Action
		ownership policy.Ownership
		allowed   bool
	}{
		{"anonymous_create_denied", anonymous, policy.ActionCreate, policy.OwnershipUnknown, false},
		{"anonymous_delete_denied", anonymous, policy.ActionDelete, policy.OwnershipOther, false},

		{"member_create_allowed", member, policy.ActionCreate, policy.OwnershipUnknown, true},
		{"owner_update_allowed", member, policy.ActionUpdate, policy.OwnershipOwner, true},
		{"owner_patch_allowed", member, policy.ActionPartialUpdate, policy.OwnershipOwner, true},
		{"owner_delete_allowed", member, policy.ActionDelete, policy.OwnershipOwner, true},
		{"member_update_other_denied", member, policy.ActionUpdate, policy.OwnershipOther, false},
		{"member_delete_other_denied", member, policy.ActionDelete, policy.OwnershipOther, false},

		{"moderator_delete_other_allowed", moderator, policy.ActionDelete, policy.OwnershipOther, true},
		{"moderator_update_other_denied", moderator, policy.ActionUpdate, policy.OwnershipOther, false},
		{"moderator_patch_other_denied", moderator, policy.ActionPartialUpdate, policy.OwnershipOther, false},
		{"moderator_own_update_allowed", moderator, policy.ActionUpdate, policy.OwnershipOwner, true},

		{"admin_update_other_allowed", admin, policy.ActionUpdate, policy.OwnershipOther, true},
		{"admin_delete_other_allowed", admin, policy.ActionDelete, policy.OwnershipOther, true},

		// Collection-level gate before the object is located
		{"member_collection_gate_open", member, policy.ActionDelete, policy.OwnershipUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, resource := range []policy.Resource{policy.ResourceReview, policy.ResourceComment} {
				decision := policy.Decide(tt.caps, tt.action, resource, tt.ownership)
				assert.Equal(t, tt.allowed, decision.Allowed())
			}
		})
	}
}

/*
TestDecide_UserDirectory verifies the directory is closed to everyone but
admins for every action, reads included.
*/
func TestDecide_UserDirectory(t *testing.T) {
	actions := []policy.Action{
		policy.ActionList, policy.ActionRetrieve, policy.ActionCreate,
		policy.ActionUpdate, policy.ActionPartialUpdate, policy.ActionDelete,
	}

	for _, action := range actions {
		assert.False(t, policy.Decide(anonymous, action, policy.ResourceUserAdmin, policy.OwnershipUnknown).Allowed())
		assert.False(t, policy.Decide(member, action, policy.ResourceUserAdmin, policy.OwnershipUnknown).Allowed())
		assert.False(t, policy.Decide(moderator, action, policy.ResourceUserAdmin, policy.OwnershipUnknown).Allowed())
		assert.True(t, policy.Decide(admin, action, policy.ResourceUserAdmin, policy.OwnershipUnknown).Allowed())
	}
}

/*
TestDecide_SelfProfile verifies the self-profile surface only requires
authentication.
*/
func TestDecide_SelfProfile(t *testing.T) {
	assert.False(t, policy.Decide(anonymous, policy.ActionRetrieve, policy.ResourceSelf, policy.OwnershipOwner).Allowed())
	assert.True(t, policy.Decide(member, policy.ActionRetrieve, policy.ResourceSelf, policy.OwnershipOwner).Allowed())
	assert.True(t, policy.Decide(member, policy.ActionPartialUpdate, policy.ResourceSelf, policy.OwnershipOwner).Allowed())
	assert.True(t, policy.Decide(moderator, policy.ActionPartialUpdate, policy.ResourceSelf, policy.OwnershipOwner).Allowed())
}

/*
TestCapabilitiesFromClaims checks the derivation of capabilities from JWT
claims, including the anonymous (nil) case.
*/
func TestCapabilitiesFromClaims(t *testing.T) {
	tests := []struct {
		name      string
		claims    *sec.AuthClaims
		expected  policy.Capabilities
	}{
		{"nil_claims", nil, policy.Capabilities{}},
		{"user_role", &sec.AuthClaims{Role: "user"}, policy.Capabilities{Authenticated: true}},
		{"moderator_role", &sec.AuthClaims{Role: "moderator"}, policy.Capabilities{Authenticated: true, Moderator: true}},
		{"admin_role", &sec.AuthClaims{Role: "admin"}, policy.Capabilities{Authenticated: true, Admin: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.CapabilitiesFromClaims(tt.claims))
		})
	}
}

/*
TestAction_Safe verifies the read-only action classification.
*/
func TestAction_Safe(t *testing.T) {
	assert.True(t, policy.ActionList.Safe())
	assert.True(t, policy.ActionRetrieve.Safe())
	assert.False(t, policy.ActionCreate.Safe())
	assert.False(t, policy.ActionUpdate.Safe())
	assert.False(t, policy.ActionPartialUpdate.Safe())
	assert.False(t, policy.ActionDelete.Safe())
}
