package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanManageRosters(t *testing.T) {
	assert.False(t, CanManageRosters(UserRoleParticipant))
	assert.True(t, CanManageRosters(UserRoleLeader))
	assert.True(t, CanManageRosters(UserRoleAdministrator))
	assert.False(t, CanManageRosters(""))

	leader := &User{Role: UserRoleLeader}
	assert.True(t, leader.CanManageRosters())
	participant := &User{Role: UserRoleParticipant}
	assert.False(t, participant.CanManageRosters())
}
