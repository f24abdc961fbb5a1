package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanEdit_NoActor(t *testing.T) {
	for _, r := range Roles {
		assert.False(t, CanEdit(nil, &Account{ID: 1, Role: r}), "nil actor must not edit %s", r)
	}
}

func TestCanEdit_Table(t *testing.T) {
	// expected[actorRole][targetRole] = {differentID, sameID}
	expected := map[Role]map[Role][2]bool{
		RoleAdministrator: {
			RoleAdministrator: {true, true},
			RoleManager:       {true, true},
			RoleUser:          {true, true},
		},
		RoleManager: {
			RoleAdministrator: {false, false},
			RoleManager:       {false, false},
			RoleUser:          {true, true},
		},
		RoleUser: {
			RoleAdministrator: {false, false},
			RoleManager:       {false, false},
			RoleUser:          {false, true},
		},
	}

	cases := 0
	for _, actorRole := range Roles {
		for _, targetRole := range Roles {
			for i, sameID := range []bool{false, true} {
				actor := &Account{ID: 10, Role: actorRole}
				target := &Account{ID: 20, Role: targetRole}
				if sameID {
					target.ID = actor.ID
				}
				name := fmt.Sprintf("%s->%s/same=%v", actorRole, targetRole, sameID)
				t.Run(name, func(t *testing.T) {
					assert.Equal(t, expected[actorRole][targetRole][i], CanEdit(actor, target))
				})
				cases++
			}
		}
	}
	assert.Equal(t, 18, cases)
}

func TestCanCreate(t *testing.T) {
	assert.False(t, CanCreate(nil))
	assert.True(t, CanCreate(&Account{Role: RoleAdministrator}))
	assert.True(t, CanCreate(&Account{Role: RoleManager}))
	assert.False(t, CanCreate(&Account{Role: RoleUser}))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("manager")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, r)

	r, ok = ParseRole(" ADMINISTRATOR ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdministrator, r)

	_, ok = ParseRole("guest")
	assert.False(t, ok)

	assert.Equal(t, "user", RoleUser.Lower())
}
