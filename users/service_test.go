package users

import (
	"context"
	"testing"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/store"
)

func seedUser(t *testing.T, svc *UserService, name, email string) *store.User {
	t.Helper()
	u, err := svc.Create(context.Background(), CreateUserRequest{Name: name, Email: email, Password: "pw"})
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	return u
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(store.NewMemoryStore())
	seedUser(t, svc, "alice", "alice@example.com")

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{"duplicate name", CreateUserRequest{Name: "alice", Email: "x@example.com", Password: "pw"}},
		{"duplicate email", CreateUserRequest{Name: "bob", Email: "alice@example.com", Password: "pw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.req); !apperror.IsConflictError(err) {
				t.Fatalf("expected conflict, got %v", err)
			}
		})
	}
}

func TestDeleteBlockedWhileOwningContent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewUserService(st)
	owner := seedUser(t, svc, "alice", "alice@example.com")

	if _, err := st.CreatePost(ctx, &store.Post{UserID: owner.ID, Title: "t", Content: "c"}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := svc.Delete(ctx, owner.ID); !apperror.IsConflictError(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.Get(ctx, owner.ID); err != nil {
		t.Fatalf("user should still exist: %v", err)
	}
}

func TestDeleteMissingUser(t *testing.T) {
	svc := NewUserService(store.NewMemoryStore())
	if err := svc.Delete(context.Background(), 99); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFollowGraph(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(store.NewMemoryStore())
	alice := seedUser(t, svc, "alice", "alice@example.com")
	bob := seedUser(t, svc, "bob", "bob@example.com")

	if err := svc.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	// Re-following must not error or duplicate.
	if err := svc.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("repeated Follow: %v", err)
	}

	followers, err := svc.Followers(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if len(followers) != 1 || followers[0].ID != alice.ID {
		t.Fatalf("followers = %v, want [alice]", followers)
	}

	following, err := svc.Following(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Following: %v", err)
	}
	if len(following) != 1 || following[0].ID != bob.ID {
		t.Fatalf("following = %v, want [bob]", following)
	}

	if err := svc.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	followers, err = svc.Followers(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if len(followers) != 0 {
		t.Fatalf("expected no followers after unfollow, got %d", len(followers))
	}
}

func TestFollowUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(store.NewMemoryStore())
	alice := seedUser(t, svc, "alice", "alice@example.com")

	if err := svc.Follow(ctx, alice.ID, 999); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
