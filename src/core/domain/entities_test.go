package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleForUsername(t *testing.T) {
	tests := []struct {
		username string
		want     Role
	}{
		{"admin", RoleAdmin},
		{"Admin", RoleAdmin},
		{"nikita", RoleNikita},
		{"NIKITA", RoleNikita},
		{"Никита", RoleNikita},
		{"никита", RoleNikita},
		{"alice", RoleSurvivor},
		{"nikita2", RoleSurvivor},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleForUsername(tt.username))
		})
	}
}

func TestRole_IsSpecial(t *testing.T) {
	assert.True(t, RoleNikita.IsSpecial())
	assert.False(t, RoleAdmin.IsSpecial())
	assert.False(t, RoleSurvivor.IsSpecial())
	assert.False(t, Role("ghost").Valid())
}

func TestSelectWinner(t *testing.T) {
	row := func(name string, role Role, taps, points int64) ParticipantStats {
		return ParticipantStats{
			PlayerRoundStats: PlayerRoundStats{Taps: taps, Points: points},
			Username:         name,
			Role:             role,
		}
	}

	t.Run("special participant is skipped", func(t *testing.T) {
		w, ok := SelectWinner([]ParticipantStats{
			row("nikita", RoleNikita, 500, 0),
			row("alice", RoleSurvivor, 70, 80),
			row("bob", RoleSurvivor, 55, 60),
		})
		assert.True(t, ok)
		assert.Equal(t, Winner{Username: "alice", Points: 80}, w)
	})

	t.Run("top scorer wins", func(t *testing.T) {
		w, ok := SelectWinner([]ParticipantStats{
			row("alice", RoleSurvivor, 70, 80),
			row("bob", RoleSurvivor, 55, 60),
		})
		assert.True(t, ok)
		assert.Equal(t, "alice", w.Username)
	})

	t.Run("only special participants", func(t *testing.T) {
		_, ok := SelectWinner([]ParticipantStats{row("nikita", RoleNikita, 10, 0)})
		assert.False(t, ok)
	})

	t.Run("nobody played", func(t *testing.T) {
		_, ok := SelectWinner(nil)
		assert.False(t, ok)
	})
}

func TestRoundErrors(t *testing.T) {
	err := fmt.Errorf("tap: %w", NewRoundNotActiveError(RoundFinished))
	assert.True(t, IsRoundNotActive(err))
	assert.False(t, IsNotFound(err))

	nf := NewRoundNotFoundError()
	assert.True(t, IsNotFound(nf))
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.False(t, IsRoundNotActive(nf))
}
