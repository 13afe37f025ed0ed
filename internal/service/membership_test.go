package service

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/model"
)

func TestMembershipService_AddIsAntiEnumeration(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, member, ws := h.seed(t)

	_, errUnknown := h.members.Add(ctx, admin, ws, "nobody@example.org", "member")
	unknownEvent := h.lastEvent(t, ws)

	_, errExisting := h.members.Add(ctx, admin, ws, member.Email, "member")
	existingEvent := h.lastEvent(t, ws)

	assert.ErrorIs(t, errUnknown, model.ErrMemberAddRejected)
	assert.ErrorIs(t, errExisting, model.ErrMemberAddRejected)
	assert.Equal(t, errUnknown.Error(), errExisting.Error(), "callers cannot tell the cases apart")

	assert.Equal(t, model.OutcomeFailure, unknownEvent.Outcome)
	assert.Equal(t, ReasonUserNotFound, unknownEvent.Payload["reason"])
	assert.Equal(t, model.OutcomeFailure, existingEvent.Outcome)
	assert.Equal(t, ReasonAlreadyMember, existingEvent.Payload["reason"])
}

func TestMembershipService_AddDefaultsToMember(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, ws := h.register(t, "admin@example.org")
	h.register(t, "new@example.org")

	m, err := h.members.Add(ctx, admin, ws, "  NEW@example.org ", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, m.Role)
	assert.Equal(t, "new@example.org", m.Email)

	ev := h.lastEvent(t, ws)
	assert.Equal(t, model.ActionWorkspaceMemberAdd, ev.Action)
	assert.Equal(t, model.OutcomeSuccess, ev.Outcome)
	assert.Equal(t, m.UserID, ev.Payload["target_user_id"])
}

func TestMembershipService_MemberCannotMutate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, member, ws := h.seed(t)

	_, err := h.members.Add(ctx, member, ws, "x@example.org", "member")
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = h.members.UpdateRole(ctx, member, ws, admin.UserID, "member")
	assert.ErrorIs(t, err, model.ErrForbidden)
	err = h.members.Remove(ctx, member, ws, admin.UserID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	ev := h.lastEvent(t, ws)
	assert.Equal(t, model.ActionWorkspaceMemberRemove, ev.Action)
	assert.Equal(t, ReasonForbidden, ev.Payload["reason"])
}

func TestMembershipService_LastAdminIsProtected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, _, ws := h.seed(t)

	_, err := h.members.UpdateRole(ctx, admin, ws, admin.UserID, "member")
	assert.ErrorIs(t, err, model.ErrQuorumViolation)
	assert.Equal(t, ReasonLastAdmin, h.lastEvent(t, ws).Payload["reason"])

	err = h.members.Remove(ctx, admin, ws, admin.UserID)
	assert.ErrorIs(t, err, model.ErrQuorumViolation)

	role, err := h.store.Members().GetRole(ctx, ws, admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role, "state is unchanged")

	expected := `
# HELP docrag_quorum_violations_total Membership mutations rejected because they would remove the last admin.
# TYPE docrag_quorum_violations_total counter
docrag_quorum_violations_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(expected), "docrag_quorum_violations_total"))
}

func TestMembershipService_PromoteThenDemote(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, member, ws := h.seed(t)

	m, err := h.members.UpdateRole(ctx, admin, ws, member.UserID, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, m.Role)

	// Two admins now: the original one may step down.
	_, err = h.members.UpdateRole(ctx, admin, ws, admin.UserID, "member")
	require.NoError(t, err)

	err = h.members.Remove(ctx, member, ws, admin.UserID)
	require.NoError(t, err)

	members, err := h.members.List(ctx, member, ws)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, member.UserID, members[0].UserID)

	ev := h.lastEvent(t, ws)
	assert.Equal(t, model.ActionWorkspaceMemberRead, ev.Action)
	assert.Equal(t, 1, ev.Payload["returned"])
}

func TestMembershipService_Validation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, member, ws := h.seed(t)

	_, err := h.members.UpdateRole(ctx, admin, ws, "not-a-uuid", "member")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = h.members.UpdateRole(ctx, admin, ws, member.UserID, "owner")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Equal(t, ReasonInvalidRole, h.lastEvent(t, ws).Payload["reason"])

	// Authorization is checked before the role is parsed.
	_, err = h.members.UpdateRole(ctx, member, ws, admin.UserID, "owner")
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Equal(t, ReasonForbidden, h.lastEvent(t, ws).Payload["reason"])

	outsider, _ := h.register(t, "outsider@example.org")
	_, err = h.members.Add(ctx, outsider, ws, "someone@example.org", "owner")
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Equal(t, ReasonForbidden, h.lastEvent(t, ws).Payload["reason"])

	err = h.members.Remove(ctx, admin, ws, model.NewID())
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, ReasonMemberNotFound, h.lastEvent(t, ws).Payload["reason"])

	_, err = h.members.List(ctx, admin, "bad")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
