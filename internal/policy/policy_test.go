package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docrag/internal/model"
)

func TestAllowedLabels(t *testing.T) {
	assert.ElementsMatch(t, model.AllLabels, AllowedLabels(model.RoleAdmin))
	assert.Equal(t,
		[]model.ClassificationLabel{model.LabelPublic, model.LabelInternal},
		AllowedLabels(model.RoleMember),
	)
	assert.Empty(t, AllowedLabels(model.Role("guest")))
}

func TestAdminSeesSupersetOfMember(t *testing.T) {
	admin := AllowedLabels(model.RoleAdmin)
	for _, l := range AllowedLabels(model.RoleMember) {
		assert.Contains(t, admin, l)
	}
}

func TestCanSee(t *testing.T) {
	assert.True(t, CanSee(model.RoleMember, model.LabelPublic))
	assert.True(t, CanSee(model.RoleMember, model.LabelInternal))
	assert.False(t, CanSee(model.RoleMember, model.LabelConfidential))
	assert.False(t, CanSee(model.RoleMember, model.LabelRestricted))
	assert.True(t, CanSee(model.RoleAdmin, model.LabelRestricted))
	assert.False(t, CanSee(model.RoleAdmin, model.ClassificationLabel("secret")))
}

func TestAuthorize(t *testing.T) {
	checks := map[string]func(model.Role) error{
		"classification": AuthorizeClassificationChange,
		"membership":     AuthorizeMembershipMutation,
		"ingest":         AuthorizeIngest,
		"audit":          AuthorizeAuditRead,
	}
	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, check(model.RoleAdmin))
			assert.ErrorIs(t, check(model.RoleMember), model.ErrForbidden)
			assert.ErrorIs(t, check(model.Role("")), model.ErrForbidden)
		})
	}
}

func TestCheckAdminQuorum(t *testing.T) {
	admin := model.RoleAdmin
	member := model.RoleMember

	tests := []struct {
		name       string
		adminCount int
		current    model.Role
		next       *model.Role
		wantErr    bool
	}{
		{"demote last admin", 1, model.RoleAdmin, &member, true},
		{"remove last admin", 1, model.RoleAdmin, nil, true},
		{"demote one of two admins", 2, model.RoleAdmin, &member, false},
		{"remove one of two admins", 2, model.RoleAdmin, nil, false},
		{"keep last admin as admin", 1, model.RoleAdmin, &admin, false},
		{"remove member", 1, model.RoleMember, nil, false},
		{"promote member", 1, model.RoleMember, &admin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAdminQuorum(tt.adminCount, tt.current, tt.next)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrQuorumViolation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
