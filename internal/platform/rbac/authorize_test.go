package rbac

import (
	"testing"

	userdomain "securetask/backend/internal/user/domain"
)

func TestAuthorize(t *testing.T) {
	assignee := "u2"

	cases := []struct {
		name       string
		role       userdomain.Role
		assigneeID *string
		actingID   string
		permit     bool
	}{
		{"creator", userdomain.RoleUser, &assignee, "u1", true},
		{"assignee", userdomain.RoleUser, &assignee, "u2", true},
		{"admin bypass", userdomain.RoleAdmin, &assignee, "u3", true},
		{"manager bypass", userdomain.RoleManager, &assignee, "u3", true},
		{"unrelated user", userdomain.RoleUser, &assignee, "u3", false},
		{"unassigned, non-creator", userdomain.RoleUser, nil, "u2", false},
		{"unassigned, creator", userdomain.RoleUser, nil, "u1", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Authorize(c.role, "u1", c.assigneeID, c.actingID)
			if c.permit && err != nil {
				t.Errorf("want permit, got %v", err)
			}
			if !c.permit && err != ErrAccessDenied {
				t.Errorf("want ErrAccessDenied, got %v", err)
			}
		})
	}
}
